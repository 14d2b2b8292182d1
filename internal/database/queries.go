package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zombar/biasanalyzer/internal/models"
)

// timeLayout is fixed width so that stored times sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}

// SaveArticle inserts or replaces a cached article
func (db *DB) SaveArticle(ctx context.Context, article *models.Article) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO articles (title, content, url, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			content = excluded.content,
			url = excluded.url,
			fetched_at = excluded.fetched_at
	`, article.Title, article.Content, article.URL, formatTime(article.FetchedAt))
	if err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

// GetArticle retrieves a cached article by title, ignoring case
func (db *DB) GetArticle(ctx context.Context, title string) (*models.Article, error) {
	var (
		article   models.Article
		fetchedAt string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT title, content, url, fetched_at
		FROM articles
		WHERE title = ?
	`, title).Scan(&article.Title, &article.Content, &article.URL, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrArticleNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	if article.FetchedAt, err = parseTime(fetchedAt); err != nil {
		return nil, err
	}
	return &article, nil
}

// ListArticles returns cached articles, most recently fetched first.
// ContentLength counts characters.
func (db *DB) ListArticles(ctx context.Context, limit, offset int) ([]models.ArticleSummary, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT title, url, length(content), fetched_at
		FROM articles
		ORDER BY fetched_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []models.ArticleSummary{}
	for rows.Next() {
		var (
			a         models.ArticleSummary
			fetchedAt string
		)
		if err := rows.Scan(&a.Title, &a.URL, &a.ContentLength, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if a.FetchedAt, err = parseTime(fetchedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return articles, nil
}

// DeleteArticle removes a cached article
func (db *DB) DeleteArticle(ctx context.Context, title string) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM articles WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %q", ErrArticleNotFound, title)
	}
	return nil
}
