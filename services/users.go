package services

import (
	"context"

	"keijiban/models"
	"keijiban/store"

	"golang.org/x/crypto/bcrypt"
)

// UserService exists only in role mode; key mode has no user records at
// all. Every admin-gated operation re-validates the requester against the
// current document, so a deleted admin loses access immediately.
type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}

// BootstrapDocument builds the document a fresh store starts from: no
// posts, and in role mode the admin/admin123 account.
func BootstrapDocument(withUsers bool) store.Seed {
	return func() *models.Document {
		doc := &models.Document{Posts: []models.Post{}}
		if withUsers {
			hash, err := HashPassword("admin123")
			if err != nil {
				// bcrypt at DefaultCost cannot fail on a short literal.
				panic(err)
			}
			doc.Users = []models.User{{
				ID:           newID(),
				Username:     "admin",
				PasswordHash: hash,
				Role:         models.RoleAdmin,
			}}
		}
		return doc
	}
}

// Login succeeds only for an existing user whose username and password
// match and whose role is admin. Any other combination is ErrForbidden;
// wrong password and non-admin are deliberately indistinguishable.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range doc.Users {
		if u.Username != username || u.Role != models.RoleAdmin {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
			return u, nil
		}
	}
	return models.User{}, ErrForbidden
}

// IsAdmin reports whether id resolves to an existing admin account.
func (s *UserService) IsAdmin(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	doc, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	return isAdmin(doc, id), nil
}

func isAdmin(doc *models.Document, id string) bool {
	for _, u := range doc.Users {
		if u.ID == id {
			return u.Role == models.RoleAdmin
		}
	}
	return false
}

// Create adds a user on behalf of an existing admin.
func (s *UserService) Create(ctx context.Context, requesterID, username, password, role string) (models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		ID:           newID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	err = s.store.Update(ctx, func(doc *models.Document) error {
		if !isAdmin(doc, requesterID) {
			return ErrForbidden
		}
		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, requesterID string) ([]models.User, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !isAdmin(doc, requesterID) {
		return nil, ErrForbidden
	}
	if doc.Users == nil {
		return []models.User{}, nil
	}
	return doc.Users, nil
}

// Delete removes the target user. Unknown targets are a no-op; nothing
// stops an admin from deleting their own account.
func (s *UserService) Delete(ctx context.Context, requesterID, targetID string) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		if !isAdmin(doc, requesterID) {
			return ErrForbidden
		}
		kept := make([]models.User, 0, len(doc.Users))
		for _, u := range doc.Users {
			if u.ID != targetID {
				kept = append(kept, u)
			}
		}
		doc.Users = kept
		return nil
	})
}

// UpdateRole overwrites the target's role and returns the updated user,
// or nil when the target does not exist (success either way).
func (s *UserService) UpdateRole(ctx context.Context, requesterID, targetID, newRole string) (*models.User, error) {
	var updated *models.User
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if !isAdmin(doc, requesterID) {
			return ErrForbidden
		}
		for i := range doc.Users {
			if doc.Users[i].ID == targetID {
				doc.Users[i].Role = newRole
				u := doc.Users[i]
				updated = &u
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
