package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/meilisearch/meilisearch-go"
	"github.com/sony/gobreaker"
)

const booksIndex = "books"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Searcher is the external full-text index used for title search.
type Searcher interface {
	IndexBook(ctx context.Context, book Book) error
	Search(ctx context.Context, query string, limit int) ([]Book, error)
}

// searchDoc is the flat document shape stored in the index.
type searchDoc struct {
	ID       string `json:"id"`
	ISBN     string `json:"isbn,omitempty"`
	Title    string `json:"title"`
	Genre    string `json:"genre,omitempty"`
	Language string `json:"language,omitempty"`
}

// MeiliSearcher indexes and searches books in Meilisearch. All calls go
// through a circuit breaker so a dead index degrades to the store-backed
// search instead of stalling every request.
type MeiliSearcher struct {
	client  meilisearch.ServiceManager
	breaker *gobreaker.CircuitBreaker
}

// NewMeiliSearcher connects to the Meilisearch instance at host.
func NewMeiliSearcher(host, apiKey string) *MeiliSearcher {
	return &MeiliSearcher{
		client: meilisearch.New(host, meilisearch.WithAPIKey(apiKey)),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "meilisearch",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// IndexBook upserts one book document into the index.
func (m *MeiliSearcher) IndexBook(ctx context.Context, book Book) error {
	doc := searchDoc{
		ID:       book.ID.String(),
		ISBN:     book.ISBN,
		Title:    book.Title,
		Genre:    book.Genre,
		Language: book.Language,
	}

	primaryKey := "id"
	_, err := m.breaker.Execute(func() (any, error) {
		return m.client.Index(booksIndex).AddDocumentsWithContext(ctx, []searchDoc{doc}, &primaryKey)
	})
	if err != nil {
		return fmt.Errorf("index book: %w", err)
	}
	return nil
}

// Search queries the index and maps hits back to catalog books. Only indexed
// fields are populated on the result.
func (m *MeiliSearcher) Search(ctx context.Context, query string, limit int) ([]Book, error) {
	res, err := m.breaker.Execute(func() (any, error) {
		return m.client.Index(booksIndex).SearchWithContext(ctx, query, &meilisearch.SearchRequest{
			Limit: int64(limit),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	resp, ok := res.(*meilisearch.SearchResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected search response type %T", res)
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, fmt.Errorf("re-encode hits: %w", err)
	}

	var docs []searchDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode hits: %w", err)
	}

	books := make([]Book, 0, len(docs))
	for _, d := range docs {
		book, convErr := bookFromDoc(d)
		if convErr != nil {
			return nil, convErr
		}
		books = append(books, book)
	}
	return books, nil
}

func bookFromDoc(d searchDoc) (Book, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Book{}, fmt.Errorf("hit has invalid id %q: %w", d.ID, err)
	}
	return Book{
		ID:       id,
		ISBN:     d.ISBN,
		Title:    d.Title,
		Genre:    d.Genre,
		Language: d.Language,
	}, nil
}
