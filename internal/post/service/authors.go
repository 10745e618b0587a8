package service

import (
	"context"
	"slices"
	"strings"

	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

type authorSet map[id.UserID]models.Author

// byline returns the author for userID. Deleted accounts keep their ID with
// an empty name.
func (a authorSet) byline(userID id.UserID) models.Author {
	if author, ok := a[userID]; ok {
		return author
	}
	return models.Author{ID: userID}
}

func (s *Service) lookupAuthors(ctx context.Context, ids []id.UserID) (authorSet, error) {
	unique := slices.Compact(slices.SortedFunc(slices.Values(ids), compareUserIDs))
	if len(unique) == 0 {
		return authorSet{}, nil
	}
	users, err := s.authors.FindByIDs(ctx, unique)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authors")
	}
	set := make(authorSet, len(users))
	for userID, u := range users {
		set[userID] = models.Author{ID: u.ID, Name: u.Name, Image: u.Image}
	}
	return set, nil
}

func compareUserIDs(a, b id.UserID) int {
	return strings.Compare(a.String(), b.String())
}
