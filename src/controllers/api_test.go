package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/controllers"
	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/routes"
	"github.com/jumuiya/community-backend/src/storage"
	"github.com/jumuiya/community-backend/src/store/memory"
)

func newTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()

	cfg := lib.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		MediaDir:         t.TempDir(),
		StoreBackend:     "memory",
	}

	st := memory.New()
	media, err := storage.NewLocalStore(cfg.MediaDir)
	if err != nil {
		t.Fatalf("media store: %v", err)
	}

	app := fiber.New()
	routes.AuthRoutes(app, controllers.NewAuthController(st, media, cfg), cfg)
	routes.ArticleRoutes(app, controllers.NewArticleController(st, st, media), cfg)
	routes.PrayerRoutes(app, controllers.NewPrayerController(st, st), cfg)
	routes.MarketplaceRoutes(app, controllers.NewMarketplaceController(st, st, media), cfg)
	routes.MessagingRoutes(app, controllers.NewMessagingController(st, st, media), cfg)
	return app, st
}

// request performs a JSON request and decodes the response body into a map.
func request(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, decoded
}

// register creates a fresh user and returns its id and access token.
func register(t *testing.T, app *fiber.App, email string) (id, token string) {
	t.Helper()

	status, body := request(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": "secret123",
		"name":     "Tester",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, status, body)
	}
	user := body["user"].(map[string]any)
	tokens := body["tokens"].(map[string]any)
	return user["id"].(string), tokens["accessToken"].(string)
}

func TestAuthFlow(t *testing.T) {
	app, _ := newTestApp(t)

	_, token := register(t, app, "flow@example.com")

	// Duplicate email is rejected.
	status, body := request(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "flow@example.com", "password": "secret123",
	})
	if status != http.StatusBadRequest || body["error"] != "Email already registered" {
		t.Errorf("duplicate register: %d %v", status, body)
	}

	// Short passwords are rejected.
	status, _ = request(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "short@example.com", "password": "abc",
	})
	if status != http.StatusBadRequest {
		t.Errorf("short password: %d", status)
	}

	status, body = request(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "flow@example.com", "password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login: %d %v", status, body)
	}
	refresh := body["tokens"].(map[string]any)["refreshToken"].(string)

	status, _ = request(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "flow@example.com", "password": "wrong-pass",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", status)
	}

	status, body = request(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
		"refreshToken": refresh,
	})
	if status != http.StatusOK {
		t.Fatalf("refresh: %d %v", status, body)
	}
	if body["tokens"].(map[string]any)["accessToken"] == "" {
		t.Error("refresh returned no access token")
	}

	// An access token is not a refresh token.
	status, _ = request(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
		"refreshToken": token,
	})
	if status != http.StatusUnauthorized {
		t.Errorf("access-as-refresh: %d", status)
	}

	status, body = request(t, app, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK || body["email"] != "flow@example.com" {
		t.Errorf("me: %d %v", status, body)
	}

	status, _ = request(t, app, http.MethodGet, "/api/auth/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("me without token: %d", status)
	}
}

func TestProfileUpdate(t *testing.T) {
	app, _ := newTestApp(t)
	id, token := register(t, app, "profile@example.com")

	status, body := request(t, app, http.MethodPatch, "/api/auth/me", token, fiber.Map{
		"name": "Renamed", "bio": "hello",
	})
	if status != http.StatusOK {
		t.Fatalf("update profile: %d %v", status, body)
	}
	user := body["user"].(map[string]any)
	if user["name"] != "Renamed" || user["bio"] != "hello" {
		t.Errorf("profile = %v", user)
	}

	// The public profile reflects the change and hides the password.
	status, body = request(t, app, http.MethodGet, "/api/auth/"+id, "", nil)
	if status != http.StatusOK || body["name"] != "Renamed" {
		t.Errorf("public profile: %d %v", status, body)
	}
	if _, ok := body["password"]; ok {
		t.Error("password leaked in public profile")
	}
}

func createArticle(t *testing.T, app *fiber.App, token string, payload fiber.Map) map[string]any {
	t.Helper()
	status, body := request(t, app, http.MethodPost, "/api/articles/", token, payload)
	if status != http.StatusCreated {
		t.Fatalf("create article: %d %v", status, body)
	}
	return body
}

func TestArticleLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := register(t, app, "author@example.com")

	body := createArticle(t, app, token, fiber.Map{"title": "First Post", "content": "hello world"})
	if body["message"] != "Article created successfully" {
		t.Errorf("create message = %v", body["message"])
	}
	if body["status"] != "draft" || body["category"] != "Other" {
		t.Errorf("defaults not applied: status=%v category=%v", body["status"], body["category"])
	}
	if _, ok := body["published_at"]; ok {
		t.Error("draft carries published_at")
	}
	author := body["author"].(map[string]any)
	if author["email"] != "author@example.com" {
		t.Errorf("author not populated: %v", author)
	}
	id := body["_id"].(string)

	// Drafts are hidden from the default listing.
	status, body := request(t, app, http.MethodGet, "/api/articles/", "", nil)
	if status != http.StatusOK || body["count"].(float64) != 0 {
		t.Errorf("default listing: %d %v", status, body)
	}
	status, body = request(t, app, http.MethodGet, "/api/articles/?status=draft", "", nil)
	if status != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("draft listing: %d %v", status, body)
	}

	// Publishing stamps published_at once.
	status, body = request(t, app, http.MethodPatch, "/api/articles/"+id, token, fiber.Map{"status": "published"})
	if status != http.StatusOK {
		t.Fatalf("publish: %d %v", status, body)
	}
	publishedAt, ok := body["published_at"].(string)
	if !ok || publishedAt == "" {
		t.Fatalf("published_at missing after publish: %v", body)
	}

	status, body = request(t, app, http.MethodPatch, "/api/articles/"+id, token, fiber.Map{"title": "Retitled"})
	if status != http.StatusOK {
		t.Fatalf("retitle: %d %v", status, body)
	}
	if body["published_at"] != publishedAt {
		t.Errorf("published_at moved: %v -> %v", publishedAt, body["published_at"])
	}
	if body["title"] != "Retitled" {
		t.Errorf("title = %v", body["title"])
	}

	status, _ = request(t, app, http.MethodGet, "/api/articles/unknown-id", "", nil)
	if status != http.StatusBadRequest {
		t.Errorf("malformed id: %d", status)
	}
}

func TestArticleAuthorization(t *testing.T) {
	app, _ := newTestApp(t)
	_, owner := register(t, app, "owner@example.com")
	_, stranger := register(t, app, "stranger@example.com")

	body := createArticle(t, app, owner, fiber.Map{"title": "Mine", "content": "c"})
	id := body["_id"].(string)

	status, _ := request(t, app, http.MethodPost, "/api/articles/", "", fiber.Map{"title": "t", "content": "c"})
	if status != http.StatusUnauthorized {
		t.Errorf("anonymous create: %d", status)
	}

	status, body = request(t, app, http.MethodPatch, "/api/articles/"+id, stranger, fiber.Map{"title": "Stolen"})
	if status != http.StatusForbidden || body["error"] != "Not authorized" {
		t.Errorf("foreign update: %d %v", status, body)
	}
	status, _ = request(t, app, http.MethodDelete, "/api/articles/"+id, stranger, nil)
	if status != http.StatusForbidden {
		t.Errorf("foreign delete: %d", status)
	}

	// Missing entity wins over authorization.
	fake := "649f1f77bcf86cd799439011"
	status, body = request(t, app, http.MethodPatch, "/api/articles/"+fake, stranger, fiber.Map{"title": "x"})
	if status != http.StatusNotFound || body["error"] != "Article not found" {
		t.Errorf("missing article update: %d %v", status, body)
	}
}

func TestArticleViewsAndLikes(t *testing.T) {
	app, st := newTestApp(t)
	_, author := register(t, app, "viewer-author@example.com")
	_, reader := register(t, app, "reader@example.com")

	body := createArticle(t, app, author, fiber.Map{"title": "Seen", "content": "c", "status": "published"})
	id := body["_id"].(string)

	// Three reads by the same user: raw counter 3, one dedup row.
	for i := 0; i < 3; i++ {
		status, got := request(t, app, http.MethodGet, "/api/articles/"+id, reader, nil)
		if status != http.StatusOK {
			t.Fatalf("get article: %d %v", status, got)
		}
		if i == 2 && got["view_count"].(float64) != 3 {
			t.Errorf("view_count = %v, want 3", got["view_count"])
		}
	}

	// Anonymous reads bump the raw counter but leave no dedup row.
	status, got := request(t, app, http.MethodGet, "/api/articles/"+id, "", nil)
	if status != http.StatusOK || got["view_count"].(float64) != 4 {
		t.Errorf("anonymous view: %d %v", status, got["view_count"])
	}

	article, err := st.FindArticle(context.Background(), mustObjectID(t, id))
	if err != nil {
		t.Fatal(err)
	}
	if st.CountArticleViews(article.Id) != 1 {
		t.Errorf("dedup rows = %d, want 1", st.CountArticleViews(article.Id))
	}

	// Like toggling.
	status, got = request(t, app, http.MethodPost, "/api/articles/"+id+"/like", reader, nil)
	if status != http.StatusOK || got["message"] != "Like added" || got["liked"] != true {
		t.Errorf("first like: %d %v", status, got)
	}
	status, got = request(t, app, http.MethodPost, "/api/articles/"+id+"/like", reader, nil)
	if status != http.StatusOK || got["message"] != "Like removed" || got["liked"] != false {
		t.Errorf("second like: %d %v", status, got)
	}

	status, got = request(t, app, http.MethodGet, "/api/articles/"+id, reader, nil)
	if status != http.StatusOK || got["likes_count"].(float64) != 0 {
		t.Errorf("likes_count = %v", got["likes_count"])
	}
}

func TestCommentThread(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := register(t, app, "commenter@example.com")

	body := createArticle(t, app, token, fiber.Map{"title": "Thread", "content": "c"})
	articleID := body["_id"].(string)

	status, top := request(t, app, http.MethodPost, "/api/articles/"+articleID+"/comments", token, fiber.Map{
		"content": "top level",
	})
	if status != http.StatusCreated {
		t.Fatalf("create comment: %d %v", status, top)
	}
	topID := top["_id"].(string)

	status, reply := request(t, app, http.MethodPost, "/api/articles/"+articleID+"/comments", token, fiber.Map{
		"content": "a reply", "parent": topID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create reply: %d %v", status, reply)
	}
	replyID := reply["_id"].(string)

	// Replies to replies are rejected.
	status, body = request(t, app, http.MethodPost, "/api/articles/"+articleID+"/comments", token, fiber.Map{
		"content": "too deep", "parent": replyID,
	})
	if status != http.StatusBadRequest || body["error"] != "Comments can only be nested one level deep" {
		t.Errorf("nested reply: %d %v", status, body)
	}

	status, body = request(t, app, http.MethodPost, "/api/articles/"+articleID+"/comments", token, fiber.Map{
		"content": "orphan", "parent": "649f1f77bcf86cd799439011",
	})
	if status != http.StatusBadRequest || body["error"] != "Parent comment not found" {
		t.Errorf("unknown parent: %d %v", status, body)
	}

	// The listing nests the reply and counts top-level comments only.
	status, body = request(t, app, http.MethodGet, "/api/articles/"+articleID+"/comments", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list comments: %d %v", status, body)
	}
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}
	results := body["results"].([]any)
	entry := results[0].(map[string]any)
	replies := entry["replies"].([]any)
	if len(replies) != 1 || replies[0].(map[string]any)["_id"] != replyID {
		t.Errorf("replies = %v", replies)
	}

	// Comment like toggling.
	status, body = request(t, app, http.MethodPost, "/api/articles/"+articleID+"/comments/"+topID+"/like", token, nil)
	if status != http.StatusOK || body["liked"] != true {
		t.Errorf("comment like: %d %v", status, body)
	}

	status, body = request(t, app, http.MethodPatch, "/api/articles/"+articleID+"/comments/"+topID, token, fiber.Map{
		"content": "edited",
	})
	if status != http.StatusOK || body["content"] != "edited" {
		t.Errorf("edit comment: %d %v", status, body)
	}
}

func TestArticleDeleteCascade(t *testing.T) {
	app, st := newTestApp(t)
	_, token := register(t, app, "cascade@example.com")

	body := createArticle(t, app, token, fiber.Map{"title": "Doomed", "content": "c"})
	id := body["_id"].(string)

	status, comment := request(t, app, http.MethodPost, "/api/articles/"+id+"/comments", token, fiber.Map{
		"content": "gone soon",
	})
	if status != http.StatusCreated {
		t.Fatal("create comment failed")
	}
	commentID := comment["_id"].(string)
	if status, _ := request(t, app, http.MethodPost, "/api/articles/"+id+"/like", token, nil); status != http.StatusOK {
		t.Fatal("like failed")
	}
	// Like the comment too; this row survives the article cascade.
	if status, _ := request(t, app, http.MethodPost, "/api/articles/"+id+"/comments/"+commentID+"/like", token, nil); status != http.StatusOK {
		t.Fatal("comment like failed")
	}

	status, body = request(t, app, http.MethodDelete, "/api/articles/"+id, token, nil)
	if status != http.StatusOK || body["message"] != "Article deleted successfully" {
		t.Fatalf("delete: %d %v", status, body)
	}

	status, _ = request(t, app, http.MethodGet, "/api/articles/"+id, "", nil)
	if status != http.StatusNotFound {
		t.Errorf("article still fetchable: %d", status)
	}
	ctx := context.Background()
	if _, err := st.FindComment(ctx, mustObjectID(t, commentID)); err == nil {
		t.Error("comment survived cascade")
	}
	if n, _ := st.CountArticleLikes(ctx, mustObjectID(t, id)); n != 0 {
		t.Error("article likes survived cascade")
	}
	if n, _ := st.CountCommentLikes(ctx, mustObjectID(t, commentID)); n != 1 {
		t.Errorf("orphaned comment likes = %d, want 1", n)
	}
}

func TestPrayerLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := register(t, app, "pray@example.com")
	_, other := register(t, app, "other-pray@example.com")

	status, body := request(t, app, http.MethodPost, "/api/prayers/", token, fiber.Map{
		"title": "Public plea", "content": "c",
	})
	if status != http.StatusCreated || body["message"] != "Prayer created" {
		t.Fatalf("create prayer: %d %v", status, body)
	}
	if body["prayer_type"] != "request" || body["is_public"] != true || body["is_anonymous"] != false {
		t.Errorf("defaults: %v", body)
	}
	publicID := body["_id"].(string)

	isPublic := false
	status, body = request(t, app, http.MethodPost, "/api/prayers/", token, fiber.Map{
		"title": "Private", "content": "c", "is_public": isPublic,
	})
	if status != http.StatusCreated || body["is_public"] != false {
		t.Fatalf("private prayer: %d %v", status, body)
	}

	status, body = request(t, app, http.MethodGet, "/api/prayers/", "", nil)
	if status != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("public listing count = %v", body["count"])
	}

	// Support toggling on the public prayer.
	status, body = request(t, app, http.MethodPost, "/api/prayers/"+publicID+"/support", other, nil)
	if status != http.StatusOK || body["message"] != "Support added" || body["supported"] != true {
		t.Errorf("support: %d %v", status, body)
	}
	status, body = request(t, app, http.MethodPost, "/api/prayers/"+publicID+"/support", other, nil)
	if status != http.StatusOK || body["message"] != "Support removed" || body["supported"] != false {
		t.Errorf("unsupport: %d %v", status, body)
	}

	// Responses and their likes.
	status, body = request(t, app, http.MethodPost, "/api/prayers/"+publicID+"/responses", other, fiber.Map{
		"content": "praying for you",
	})
	if status != http.StatusCreated || body["message"] != "Response created" {
		t.Fatalf("create response: %d %v", status, body)
	}
	responseID := body["_id"].(string)

	status, body = request(t, app, http.MethodPost, "/api/prayers/"+publicID+"/responses/"+responseID+"/like", token, nil)
	if status != http.StatusOK || body["liked"] != true {
		t.Errorf("response like: %d %v", status, body)
	}

	status, body = request(t, app, http.MethodGet, "/api/prayers/"+publicID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get prayer: %d", status)
	}
	if body["responses_count"].(float64) != 1 || body["supporters_count"].(float64) != 0 {
		t.Errorf("counts: %v / %v", body["responses_count"], body["supporters_count"])
	}

	// Only the response author may delete it.
	status, _ = request(t, app, http.MethodDelete, "/api/prayers/"+publicID+"/responses/"+responseID, token, nil)
	if status != http.StatusForbidden {
		t.Errorf("foreign response delete: %d", status)
	}
	status, body = request(t, app, http.MethodDelete, "/api/prayers/"+publicID+"/responses/"+responseID, other, nil)
	if status != http.StatusOK || body["message"] != "Response deleted" {
		t.Errorf("response delete: %d %v", status, body)
	}

	status, body = request(t, app, http.MethodDelete, "/api/prayers/"+publicID, token, nil)
	if status != http.StatusOK || body["message"] != "Prayer deleted" {
		t.Errorf("prayer delete: %d %v", status, body)
	}
	status, _ = request(t, app, http.MethodGet, "/api/prayers/"+publicID, "", nil)
	if status != http.StatusNotFound {
		t.Errorf("deleted prayer fetchable: %d", status)
	}
}

func TestMarketplaceLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := register(t, app, "seller@example.com")
	_, stranger := register(t, app, "buyer@example.com")

	status, body := request(t, app, http.MethodPost, "/api/marketplace/", token, fiber.Map{
		"title": "Old bike",
	})
	if status != http.StatusCreated || body["message"] != "Listing created" {
		t.Fatalf("create listing: %d %v", status, body)
	}
	if body["currency"] != "KSH" || body["type"] != "Product" {
		t.Errorf("defaults: currency=%v type=%v", body["currency"], body["type"])
	}
	id := body["_id"].(string)

	status, _ = request(t, app, http.MethodPost, "/api/marketplace/", token, fiber.Map{})
	if status != http.StatusBadRequest {
		t.Errorf("titleless listing: %d", status)
	}

	status, body = request(t, app, http.MethodPost, "/api/marketplace/", token, fiber.Map{
		"title": "Concert", "type": "Event", "date": "2026-09-01",
	})
	if status != http.StatusCreated {
		t.Fatalf("event listing: %d %v", status, body)
	}
	if body["date"] == nil {
		t.Error("event date not stored")
	}

	status, body = request(t, app, http.MethodGet, "/api/marketplace/?type=Event", "", nil)
	if status != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("type filter count = %v", body["count"])
	}

	status, body = request(t, app, http.MethodPatch, "/api/marketplace/"+id, stranger, fiber.Map{"price": "0"})
	if status != http.StatusForbidden {
		t.Errorf("foreign update: %d %v", status, body)
	}

	status, body = request(t, app, http.MethodPatch, "/api/marketplace/"+id, token, fiber.Map{
		"price": "100", "contact": "+254700000000",
	})
	if status != http.StatusOK || body["message"] != "Listing updated" {
		t.Fatalf("update: %d %v", status, body)
	}
	if body["price"] != "100" || body["contact"] != "+254700000000" {
		t.Errorf("update fields: %v", body)
	}

	status, body = request(t, app, http.MethodDelete, "/api/marketplace/"+id, token, nil)
	if status != http.StatusOK || body["message"] != "Listing deleted" {
		t.Errorf("delete: %d %v", status, body)
	}
}

func TestMessagingFlow(t *testing.T) {
	app, _ := newTestApp(t)
	aliceID, alice := register(t, app, "alice@example.com")
	bobID, bob := register(t, app, "bob@example.com")
	_, eve := register(t, app, "eve@example.com")

	status, body := request(t, app, http.MethodPost, "/api/messaging/conversations", alice, fiber.Map{
		"participant_id": bobID,
	})
	if status != http.StatusCreated || body["message"] != "Conversation created" {
		t.Fatalf("create conversation: %d %v", status, body)
	}
	convID := body["_id"].(string)

	// The reverse direction lands on the same conversation.
	status, body = request(t, app, http.MethodPost, "/api/messaging/conversations", bob, fiber.Map{
		"participant_id": aliceID,
	})
	if status != http.StatusCreated || body["_id"] != convID {
		t.Errorf("reverse lookup minted a new conversation: %v != %v", body["_id"], convID)
	}

	status, body = request(t, app, http.MethodPost, "/api/messaging/messages", alice, fiber.Map{
		"conversation_id": convID, "content": "hi bob",
	})
	if status != http.StatusCreated || body["message"] != "Message sent" {
		t.Fatalf("send: %d %v", status, body)
	}
	firstID := body["_id"].(string)
	status, _ = request(t, app, http.MethodPost, "/api/messaging/messages", bob, fiber.Map{
		"conversation_id": convID, "content": "hi alice",
	})
	if status != http.StatusCreated {
		t.Fatal("reply failed")
	}

	// Outsiders can neither read nor write.
	status, _ = request(t, app, http.MethodGet, "/api/messaging/messages?conversation_id="+convID, eve, nil)
	if status != http.StatusForbidden {
		t.Errorf("outsider read: %d", status)
	}
	status, _ = request(t, app, http.MethodPost, "/api/messaging/messages", eve, fiber.Map{
		"conversation_id": convID, "content": "let me in",
	})
	if status != http.StatusForbidden {
		t.Errorf("outsider write: %d", status)
	}

	status, body = request(t, app, http.MethodGet, "/api/messaging/messages?conversation_id="+convID, bob, nil)
	if status != http.StatusOK {
		t.Fatalf("read: %d %v", status, body)
	}
	results := body["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("messages = %d, want 2", len(results))
	}
	first := results[0].(map[string]any)
	if first["_id"] != firstID || first["content"] != "hi bob" {
		t.Errorf("messages not oldest-first: %v", first)
	}
	sender := first["sender"].(map[string]any)
	if sender["email"] != "alice@example.com" {
		t.Errorf("sender not populated: %v", sender)
	}

	status, body = request(t, app, http.MethodGet, "/api/messaging/conversations", alice, nil)
	if status != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("conversations: %d %v", status, body)
	}

	// Only the sender deletes a message.
	status, _ = request(t, app, http.MethodDelete, "/api/messaging/messages/"+firstID, bob, nil)
	if status != http.StatusForbidden {
		t.Errorf("foreign message delete: %d", status)
	}
	status, body = request(t, app, http.MethodDelete, "/api/messaging/messages/"+firstID, alice, nil)
	if status != http.StatusOK || body["message"] != "Message deleted" {
		t.Errorf("message delete: %d %v", status, body)
	}
}

func TestSanitizationStripsScripts(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := register(t, app, "xss@example.com")

	body := createArticle(t, app, token, fiber.Map{
		"title":   "Sneaky",
		"content": `before<script>alert("x")</script>after`,
	})
	content := body["content"].(string)
	if content != "beforeafter" {
		t.Errorf("content = %q, script not stripped", content)
	}
}

// multipartUpload posts a single file field and returns the response.
func multipartUpload(t *testing.T, app *fiber.App, path, token, field, filename, contentType string, payload []byte) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("POST %s: decode response: %v", path, err)
	}
	return resp.StatusCode, decoded
}

func TestProfileImageUpload(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := register(t, app, "avatar@example.com")

	status, body := multipartUpload(t, app, "/api/auth/upload-image", token,
		"image", "avatar.png", "image/png", []byte("not-a-real-png"))
	if status != http.StatusOK {
		t.Fatalf("upload: %d %v", status, body)
	}
	image, _ := body["image"].(string)
	if !strings.HasPrefix(image, "/media/profiles/") {
		t.Errorf("image path = %q", image)
	}

	status, body = request(t, app, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK || body["image"] != image {
		t.Errorf("profile image = %v, want %q", body["image"], image)
	}

	// Non-image payloads are rejected for profile uploads.
	status, body = multipartUpload(t, app, "/api/auth/upload-image", token,
		"image", "notes.txt", "text/plain", []byte("hello"))
	if status != http.StatusBadRequest {
		t.Errorf("text upload: %d %v", status, body)
	}
}

func mustObjectID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	parsed, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("bad object id %q: %v", hex, err)
	}
	return parsed
}
