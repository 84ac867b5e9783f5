package services

import (
	"context"
	"errors"
	"time"

	"keijiban/models"
	"keijiban/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrNotFound signals that a referenced post does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden covers bad credentials, non-admin requesters and wrong
	// shared keys alike; callers get no finer distinction.
	ErrForbidden = errors.New("forbidden")
)

const idSize = 14

// newID generates ids for posts, comments and users. Nanoids cannot
// collide under rapid concurrent creation the way timestamp-derived ids
// can.
func newID() string { return gonanoid.Must(idSize) }

// PostService owns the posts collection and the comments embedded in it.
type PostService struct {
	store store.Store
}

func NewPostService(st store.Store) *PostService {
	return &PostService{store: st}
}

// List returns every post, or only those whose category exactly matches
// the filter when it is non-empty. Matching is case-sensitive.
func (s *PostService) List(ctx context.Context, category string) ([]models.Post, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return doc.Posts, nil
	}
	filtered := make([]models.Post, 0, len(doc.Posts))
	for _, p := range doc.Posts {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

type CreatePostInput struct {
	Title    string
	Author   string
	Content  string
	Category string
}

// Create appends a new post. Fields are stored as given; empty titles
// and bodies are accepted.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (models.Post, error) {
	post := models.Post{
		ID:        newID(),
		Title:     in.Title,
		Author:    in.Author,
		Content:   in.Content,
		Category:  in.Category,
		Comments:  []models.Comment{},
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.Update(ctx, func(doc *models.Document) error {
		doc.Posts = append(doc.Posts, post)
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// AddComment appends a comment to the post's list, in insertion order.
// Returns ErrNotFound when no post has that id.
func (s *PostService) AddComment(ctx context.Context, postID, author, content string) (models.Comment, error) {
	comment := models.Comment{ID: newID(), Author: author, Content: content}
	err := s.store.Update(ctx, func(doc *models.Document) error {
		for i := range doc.Posts {
			if doc.Posts[i].ID == postID {
				doc.Posts[i].Comments = append(doc.Posts[i].Comments, comment)
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// DeletePost removes the post and every comment embedded in it. Deleting
// an id that does not exist is not an error.
func (s *PostService) DeletePost(ctx context.Context, postID string) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		kept := make([]models.Post, 0, len(doc.Posts))
		for _, p := range doc.Posts {
			if p.ID != postID {
				kept = append(kept, p)
			}
		}
		doc.Posts = kept
		return nil
	})
}

// DeleteComment removes the matching comment. Missing post or comment is
// a no-op, not an error.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID string) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		for i := range doc.Posts {
			if doc.Posts[i].ID != postID {
				continue
			}
			kept := make([]models.Comment, 0, len(doc.Posts[i].Comments))
			for _, c := range doc.Posts[i].Comments {
				if c.ID != commentID {
					kept = append(kept, c)
				}
			}
			doc.Posts[i].Comments = kept
			return nil
		}
		return nil
	})
}
