package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/storage"
	"github.com/jumuiya/community-backend/src/store"
)

type ArticleController struct {
	store  store.ArticleStore
	users  store.UserStore
	media  storage.MediaStore
	policy *bluemonday.Policy
}

func NewArticleController(s store.ArticleStore, users store.UserStore, media storage.MediaStore) *ArticleController {
	return &ArticleController{
		store:  s,
		users:  users,
		media:  media,
		policy: bluemonday.UGCPolicy(),
	}
}

type articleEnvelope struct {
	Message string `json:"message"`
	models.ArticleDto
}

type commentEnvelope struct {
	Message string `json:"message"`
	models.CommentDto
}

// threadedComment is a top-level comment with its direct replies attached.
type threadedComment struct {
	models.CommentDto
	Replies []models.CommentDto `json:"replies"`
}

// List returns published articles by default; status, category and search
// narrow the result. count is the total match count regardless of page.
func (ac *ArticleController) List(c *fiber.Ctx) error {
	page := parsePage(c)
	filter := store.ArticleFilter{
		Status:   c.Query("status", string(models.ArticleStatusPublished)),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	articles, total, err := ac.store.ListArticles(c.Context(), filter, page)
	if err != nil {
		log.Printf("List articles error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to list articles"))
	}

	authorIDs := make([]primitive.ObjectID, 0, len(articles))
	for _, a := range articles {
		authorIDs = append(authorIDs, a.Author)
	}
	refs, err := resolveRefs(c.Context(), ac.users, authorIDs)
	if err != nil {
		log.Printf("List articles error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to list articles"))
	}

	results := make([]models.ArticleDto, 0, len(articles))
	for _, a := range articles {
		results = append(results, models.ArticleDto{Article: a, Author: refs[a.Author]})
	}

	return c.JSON(listResponse{Results: results, Count: total, Page: page.Page, Limit: page.Limit})
}

func (ac *ArticleController) Create(c *fiber.Ctx) error {
	_, authorID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	var req struct {
		Title    string `json:"title" form:"title"`
		Content  string `json:"content" form:"content"`
		Excerpt  string `json:"excerpt" form:"excerpt"`
		Category string `json:"category" form:"category"`
		Status   string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.Title == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Title and content are required"))
	}

	if req.Category == "" {
		req.Category = "Other"
	}
	if req.Status == "" {
		req.Status = string(models.ArticleStatusDraft)
	}

	article := models.Article{
		Title:    req.Title,
		Slug:     lib.UniqueSlug(req.Title, time.Now()),
		Content:  ac.policy.Sanitize(req.Content),
		Excerpt:  ac.policy.Sanitize(req.Excerpt),
		Category: req.Category,
		Status:   models.ArticleStatus(req.Status),
		Author:   authorID,
	}

	if file := formFile(c, "featured_image"); file != nil {
		path, err := ac.media.Save(storage.KindArticles, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse(err.Error()))
		}
		article.FeaturedImage = path
	}

	if err := ac.store.InsertArticle(c.Context(), &article); err != nil {
		log.Printf("Create article error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create article"))
	}

	return c.Status(fiber.StatusCreated).JSON(articleEnvelope{
		Message:    "Article created successfully",
		ArticleDto: models.ArticleDto{Article: article, Author: resolveRef(c.Context(), ac.users, authorID)},
	})
}

// Get returns one article enriched with fresh like/comment counts. Every
// fetch bumps the raw view counter; authenticated fetches also upsert the
// per-user dedup row, so view_count and distinct-viewer rows are different
// metrics on purpose.
func (ac *ArticleController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid article ID"))
	}

	article, err := ac.store.FindArticle(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Article not found"))
	}

	if _, viewerID, ok := caller(c); ok {
		if err := ac.store.RecordView(c.Context(), id, viewerID); err != nil {
			log.Printf("Record view error: %v", err)
		}
	}
	if err := ac.store.IncrementViews(c.Context(), id); err != nil {
		log.Printf("Increment views error: %v", err)
	} else {
		article.ViewCount++
	}

	likes, err := ac.store.CountArticleLikes(c.Context(), id)
	if err != nil {
		log.Printf("Get article error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get article"))
	}
	comments, err := ac.store.CountComments(c.Context(), id)
	if err != nil {
		log.Printf("Get article error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get article"))
	}

	return c.JSON(struct {
		models.ArticleDto
		LikesCount    int64 `json:"likes_count"`
		CommentsCount int64 `json:"comments_count"`
	}{
		ArticleDto:    models.ArticleDto{Article: *article, Author: resolveRef(c.Context(), ac.users, article.Author)},
		LikesCount:    likes,
		CommentsCount: comments,
	})
}

func (ac *ArticleController) Update(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid article ID"))
	}

	article, err := ac.store.FindArticle(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Article not found"))
	}
	if article.Author.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	// Partial update: absent fields stay untouched. excerpt may be cleared
	// with an explicit empty value; title changes re-derive the slug.
	var req struct {
		Title    *string `json:"title" form:"title"`
		Content  *string `json:"content" form:"content"`
		Excerpt  *string `json:"excerpt" form:"excerpt"`
		Category *string `json:"category" form:"category"`
		Status   *string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if req.Title != nil && *req.Title != "" {
		article.Title = *req.Title
		article.Slug = lib.UniqueSlug(*req.Title, time.Now())
	}
	if req.Content != nil && *req.Content != "" {
		article.Content = ac.policy.Sanitize(*req.Content)
	}
	if req.Excerpt != nil {
		article.Excerpt = ac.policy.Sanitize(*req.Excerpt)
	}
	if req.Category != nil && *req.Category != "" {
		article.Category = *req.Category
	}
	if req.Status != nil && *req.Status != "" {
		article.Status = models.ArticleStatus(*req.Status)
	}

	if file := formFile(c, "featured_image"); file != nil {
		path, err := ac.media.Save(storage.KindArticles, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse(err.Error()))
		}
		article.FeaturedImage = path
	}

	if err := ac.store.SaveArticle(c.Context(), article); err != nil {
		log.Printf("Update article error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update article"))
	}

	return c.JSON(articleEnvelope{
		Message:    "Article updated successfully",
		ArticleDto: models.ArticleDto{Article: *article, Author: resolveRef(c.Context(), ac.users, article.Author)},
	})
}

// Delete removes the article, then sweeps its comments, likes and views.
// Comment-like rows of the swept comments are left behind; the sweep is
// deliberately one level deep.
func (ac *ArticleController) Delete(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid article ID"))
	}

	article, err := ac.store.FindArticle(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Article not found"))
	}
	if article.Author.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	if err := ac.store.DeleteArticle(c.Context(), id); err != nil {
		log.Printf("Delete article error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete article"))
	}
	for _, sweep := range []func() error{
		func() error { return ac.store.DeleteCommentsByArticle(c.Context(), id) },
		func() error { return ac.store.DeleteArticleLikesByArticle(c.Context(), id) },
		func() error { return ac.store.DeleteArticleViewsByArticle(c.Context(), id) },
	} {
		if err := sweep(); err != nil {
			log.Printf("Delete article cascade error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete article"))
		}
	}

	return c.JSON(lib.MessageResponse("Article deleted successfully"))
}

func (ac *ArticleController) Like(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid article ID"))
	}
	if _, err := ac.store.FindArticle(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Article not found"))
	}

	liked, err := ac.store.ToggleArticleLike(c.Context(), id, userID)
	if err != nil {
		log.Printf("Like article error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to like article"))
	}

	message := "Like removed"
	if liked {
		message = "Like added"
	}
	return c.JSON(fiber.Map{"message": message, "liked": liked})
}

// ListComments pages through top-level comments newest-first, attaching each
// one's direct replies oldest-first. One replies query per page entry; depth
// is capped at one level, so the fan-out never grows past the page size.
func (ac *ArticleController) ListComments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid article ID"))
	}
	page := parsePage(c)

	comments, total, err := ac.store.ListComments(c.Context(), id, page)
	if err != nil {
		log.Printf("Get comments error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get comments"))
	}

	type withReplies struct {
		comment models.Comment
		replies []models.Comment
	}
	loaded := make([]withReplies, 0, len(comments))
	authorIDs := []primitive.ObjectID{}
	for _, comment := range comments {
		replies, err := ac.store.ListReplies(c.Context(), comment.Id)
		if err != nil {
			log.Printf("Get comments error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get comments"))
		}
		loaded = append(loaded, withReplies{comment: comment, replies: replies})
		authorIDs = append(authorIDs, comment.Author)
		for _, r := range replies {
			authorIDs = append(authorIDs, r.Author)
		}
	}

	refs, err := resolveRefs(c.Context(), ac.users, authorIDs)
	if err != nil {
		log.Printf("Get comments error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get comments"))
	}

	results := make([]threadedComment, 0, len(loaded))
	for _, entry := range loaded {
		replies := make([]models.CommentDto, 0, len(entry.replies))
		for _, r := range entry.replies {
			replies = append(replies, models.CommentDto{Comment: r, Author: refs[r.Author]})
		}
		results = append(results, threadedComment{
			CommentDto: models.CommentDto{Comment: entry.comment, Author: refs[entry.comment.Author]},
			Replies:    replies,
		})
	}

	return c.JSON(listResponse{Results: results, Count: total, Page: page.Page, Limit: page.Limit})
}

func (ac *ArticleController) CreateComment(c *fiber.Ctx) error {
	_, authorID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid article ID"))
	}

	var req struct {
		Content string `json:"content" form:"content"`
		Parent  string `json:"parent" form:"parent"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Content is required"))
	}

	if _, err := ac.store.FindArticle(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Article not found"))
	}

	comment := models.Comment{
		Article: id,
		Author:  authorID,
		Content: ac.policy.Sanitize(req.Content),
	}
	if req.Parent != "" {
		parentID, err := primitive.ObjectIDFromHex(req.Parent)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid parent comment ID"))
		}
		parent, err := ac.store.FindComment(c.Context(), parentID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Parent comment not found"))
		}
		// Threads are one level deep: a reply can never become a parent.
		if parent.Parent != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Comments can only be nested one level deep"))
		}
		comment.Parent = &parentID
	}

	if err := ac.store.InsertComment(c.Context(), &comment); err != nil {
		log.Printf("Create comment error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create comment"))
	}

	return c.Status(fiber.StatusCreated).JSON(commentEnvelope{
		Message:    "Comment created successfully",
		CommentDto: models.CommentDto{Comment: comment, Author: resolveRef(c.Context(), ac.users, authorID)},
	})
}

func (ac *ArticleController) UpdateComment(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	commentID, err := paramID(c, "commentId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid comment ID"))
	}

	comment, err := ac.store.FindComment(c.Context(), commentID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Comment not found"))
	}
	if comment.Author.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.Content != "" {
		comment.Content = ac.policy.Sanitize(req.Content)
	}

	if err := ac.store.SaveComment(c.Context(), comment); err != nil {
		log.Printf("Update comment error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update comment"))
	}

	return c.JSON(commentEnvelope{
		Message:    "Comment updated successfully",
		CommentDto: models.CommentDto{Comment: *comment, Author: resolveRef(c.Context(), ac.users, comment.Author)},
	})
}

// DeleteComment removes the comment and its own like ledger. Replies are not
// swept; direct queries can still observe them afterwards.
func (ac *ArticleController) DeleteComment(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	commentID, err := paramID(c, "commentId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid comment ID"))
	}

	comment, err := ac.store.FindComment(c.Context(), commentID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Comment not found"))
	}
	if comment.Author.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	if err := ac.store.DeleteComment(c.Context(), commentID); err != nil {
		log.Printf("Delete comment error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete comment"))
	}
	if err := ac.store.DeleteCommentLikesByComment(c.Context(), commentID); err != nil {
		log.Printf("Delete comment cascade error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete comment"))
	}

	return c.JSON(lib.MessageResponse("Comment deleted successfully"))
}

func (ac *ArticleController) LikeComment(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	commentID, err := paramID(c, "commentId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid comment ID"))
	}
	if _, err := ac.store.FindComment(c.Context(), commentID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Comment not found"))
	}

	liked, err := ac.store.ToggleCommentLike(c.Context(), commentID, userID)
	if err != nil {
		log.Printf("Like comment error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to like comment"))
	}

	message := "Like removed"
	if liked {
		message = "Like added"
	}
	return c.JSON(fiber.Map{"message": message, "liked": liked})
}
