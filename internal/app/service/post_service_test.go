package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []PostEvent
}

func (n *fakeNotifier) Broadcast(message interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, message.(PostEvent))
	return nil
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func setupPostServiceTest(t *testing.T) (PostService, *fakeNotifier, *model.Customer, *model.Customer) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	customerRepo := repository.NewCustomerRepository(testDB)
	owner := &model.Customer{Email: "owner@example.com", Name: "Owner", PasswordHash: "x"}
	other := &model.Customer{Email: "other@example.com", Name: "Other", PasswordHash: "x"}
	require.NoError(t, customerRepo.Create(owner))
	require.NoError(t, customerRepo.Create(other))

	notifier := &fakeNotifier{}
	svc := NewPostService(repository.NewPostRepository(testDB), customerRepo, notifier)
	return svc, notifier, owner, other
}

func TestPostService_CreateAndGet(t *testing.T) {
	svc, notifier, owner, _ := setupPostServiceTest(t)

	post, err := svc.CreatePost(owner.ID, PostInput{
		Title:       "  2020 Kia K5  ",
		Description: "Low mileage",
		ImageURLs:   []string{"/images/posts/user-a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2020 Kia K5", post.Title)
	require.NotNil(t, post.Customer)
	assert.Equal(t, "owner@example.com", post.Customer.Email)

	found, err := svc.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"/images/posts/user-a.jpg"}, found.ImageURLs)

	_, err = svc.GetPost(9999)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.CreatePost(9999, PostInput{Title: "x", Description: "y"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	assert.Equal(t, []string{EventPostCreated}, notifier.types())
}

func TestPostService_ListPosts(t *testing.T) {
	svc, _, owner, _ := setupPostServiceTest(t)

	for i := 0; i < 15; i++ {
		_, err := svc.CreatePost(owner.ID, PostInput{Title: fmt.Sprintf("Car %d", i), Description: "d"})
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		page      int
		wantCount int
	}{
		{name: "Page 1", page: 1, wantCount: 10},
		{name: "Page 2", page: 2, wantCount: 5},
		{name: "Page 0 treated as 1", page: 0, wantCount: 10},
		{name: "Negative page treated as 1", page: -3, wantCount: 10},
		{name: "Beyond last page", page: 5, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, total, err := svc.ListPosts(tt.page)
			require.NoError(t, err)
			assert.Equal(t, int64(15), total)
			assert.Len(t, posts, tt.wantCount)
		})
	}

	posts, _, err := svc.ListPosts(1)
	require.NoError(t, err)
	assert.Equal(t, "Car 14", posts[0].Title, "newest first")
}

func TestPostService_UpdateAndDeleteAuthorization(t *testing.T) {
	svc, notifier, owner, other := setupPostServiceTest(t)

	post, err := svc.CreatePost(owner.ID, PostInput{Title: "Old", Description: "d"})
	require.NoError(t, err)

	_, err = svc.UpdatePost(post.ID, other.ID, model.RoleCustomer, PostInput{Title: "Hijack", Description: "d"})
	assert.ErrorIs(t, err, ErrPostForbidden)
	assert.ErrorIs(t, svc.DeletePost(post.ID, other.ID, model.RoleCustomer), ErrPostForbidden)

	updated, err := svc.UpdatePost(post.ID, owner.ID, model.RoleCustomer, PostInput{Title: "New", Description: "d2"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	_, err = svc.UpdatePost(9999, owner.ID, model.RoleCustomer, PostInput{Title: "x", Description: "y"})
	assert.ErrorIs(t, err, ErrPostNotFound)

	require.NoError(t, svc.DeletePost(post.ID, 424242, model.RoleAdmin), "admins may delete any post")
	assert.ErrorIs(t, svc.DeletePost(post.ID, owner.ID, model.RoleCustomer), ErrPostNotFound)

	assert.Equal(t, []string{EventPostCreated, EventPostUpdated, EventPostDeleted}, notifier.types())
}
