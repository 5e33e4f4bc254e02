// Package memory is the in-memory store used by the test suite and by
// storeless development (STORE_BACKEND=memory). A single mutex stands in for
// the unique indexes of the mongodb implementation, which makes the ledger
// toggles atomic here.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

// pair keys a reaction-ledger row: (actor, subject) or (subject, actor)
// depending on the ledger, matching the index order of the mongodb impl.
type pair struct {
	a, b primitive.ObjectID
}

type Store struct {
	mu sync.RWMutex

	users        map[primitive.ObjectID]models.User
	usersByEmail map[string]primitive.ObjectID

	articles     map[primitive.ObjectID]models.Article
	comments     map[primitive.ObjectID]models.Comment
	articleLikes map[pair]time.Time // (user, article)
	articleViews map[pair]time.Time // (user, article)
	commentLikes map[pair]time.Time // (user, comment)

	prayers        map[primitive.ObjectID]models.Prayer
	responses      map[primitive.ObjectID]models.PrayerResponse
	prayerSupports map[pair]time.Time // (prayer, user)
	responseLikes  map[pair]time.Time // (response, user)

	listings map[primitive.ObjectID]models.MarketplaceListing

	conversations map[primitive.ObjectID]models.Conversation
	messages      map[primitive.ObjectID]models.Message
}

func New() *Store {
	return &Store{
		users:          make(map[primitive.ObjectID]models.User),
		usersByEmail:   make(map[string]primitive.ObjectID),
		articles:       make(map[primitive.ObjectID]models.Article),
		comments:       make(map[primitive.ObjectID]models.Comment),
		articleLikes:   make(map[pair]time.Time),
		articleViews:   make(map[pair]time.Time),
		commentLikes:   make(map[pair]time.Time),
		prayers:        make(map[primitive.ObjectID]models.Prayer),
		responses:      make(map[primitive.ObjectID]models.PrayerResponse),
		prayerSupports: make(map[pair]time.Time),
		responseLikes:  make(map[pair]time.Time),
		listings:       make(map[primitive.ObjectID]models.MarketplaceListing),
		conversations:  make(map[primitive.ObjectID]models.Conversation),
		messages:       make(map[primitive.ObjectID]models.Message),
	}
}

var _ store.Store = (*Store)(nil)

// toggle flips presence of a ledger key under the write lock.
func toggle(ledger map[pair]time.Time, key pair) bool {
	if _, ok := ledger[key]; ok {
		delete(ledger, key)
		return false
	}
	ledger[key] = time.Now()
	return true
}

func countByB(ledger map[pair]time.Time, b primitive.ObjectID) int64 {
	var n int64
	for k := range ledger {
		if k.b == b {
			n++
		}
	}
	return n
}

func countByA(ledger map[pair]time.Time, a primitive.ObjectID) int64 {
	var n int64
	for k := range ledger {
		if k.a == a {
			n++
		}
	}
	return n
}

func deleteByB(ledger map[pair]time.Time, b primitive.ObjectID) {
	for k := range ledger {
		if k.b == b {
			delete(ledger, k)
		}
	}
}

func deleteByA(ledger map[pair]time.Time, a primitive.ObjectID) {
	for k := range ledger {
		if k.a == a {
			delete(ledger, k)
		}
	}
}

func matchesSearch(search string, fields ...string) bool {
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortBy orders newest-first when desc, oldest-first otherwise, with the id
// as a deterministic tie-break.
func sortBy[T any](items []T, at func(T) time.Time, id func(T) primitive.ObjectID, desc bool) {
	sort.Slice(items, func(i, j int) bool {
		ti, tj := at(items[i]), at(items[j])
		if !ti.Equal(tj) {
			if desc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		}
		less := id(items[i]).Hex() < id(items[j]).Hex()
		if desc {
			return !less
		}
		return less
	})
}

func paginate[T any](items []T, page store.Page) []T {
	skip := page.Skip()
	if skip >= len(items) {
		return []T{}
	}
	end := skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
