package trade

import (
	"errors"
	"fmt"
	"time"

	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
)

const friendsKey = "friends"

var (
	ErrAlreadyFriends = errors.New("already in friend list")
	ErrSelfFriend     = errors.New("cannot add yourself as a friend")
	ErrNotFriend      = errors.New("user not in friend list")
)

// Friends is a user's one-directional friend list. Adding someone does not
// add the reverse edge.
type Friends struct {
	store  *database.Store
	userID string
}

func NewFriends(store *database.Store, userID string) *Friends {
	return &Friends{store: store, userID: userID}
}

func (f *Friends) load() ([]models.Friend, error) {
	var list []models.Friend
	if err := f.store.Get(f.userID, friendsKey, &list); err != nil {
		if !errors.Is(err, database.ErrNoEntry) {
			return nil, fmt.Errorf("load friends: %w", err)
		}
		return nil, nil
	}
	return list, nil
}

// List returns the friend list in the order friends were added.
func (f *Friends) List() ([]models.Friend, error) {
	return f.load()
}

// Add appends a friend, rejecting duplicates and self.
func (f *Friends) Add(userID, username string) (models.Friend, error) {
	if userID == f.userID {
		return models.Friend{}, ErrSelfFriend
	}
	list, err := f.load()
	if err != nil {
		return models.Friend{}, err
	}
	for _, fr := range list {
		if fr.UserID == userID {
			return models.Friend{}, ErrAlreadyFriends
		}
	}

	friend := models.Friend{UserID: userID, Username: username, AddedAt: time.Now()}
	list = append(list, friend)
	if err := f.store.Put(f.userID, friendsKey, list); err != nil {
		return models.Friend{}, fmt.Errorf("persist friends: %w", err)
	}
	return friend, nil
}

// Remove drops a friend from the list.
func (f *Friends) Remove(userID string) error {
	list, err := f.load()
	if err != nil {
		return err
	}
	for i, fr := range list {
		if fr.UserID == userID {
			list = append(list[:i], list[i+1:]...)
			if err := f.store.Put(f.userID, friendsKey, list); err != nil {
				return fmt.Errorf("persist friends: %w", err)
			}
			return nil
		}
	}
	return ErrNotFriend
}
