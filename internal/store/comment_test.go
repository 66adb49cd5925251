package store

import "testing"

func TestCommentLifecycle(t *testing.T) {
	f := setupPostTestDB(t)
	cs := NewCommentStore(f.posts.db)
	p := f.create(t, f.alice, "post", true)

	c, err := cs.Create(p.ID, f.bob, "nice post")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if c.AuthorID != f.bob || c.PostID != p.ID {
		t.Errorf("comment = %+v", c)
	}
	if _, err := cs.Create(p.ID, f.alice, "thanks"); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	n, err := cs.CountByPost(p.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	list, err := cs.ListByPost(p.ID, 0, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Content != "thanks" {
		t.Errorf("list = %+v, want newest first", list)
	}
}

func TestCommentOwnership(t *testing.T) {
	f := setupPostTestDB(t)
	cs := NewCommentStore(f.posts.db)
	p := f.create(t, f.alice, "post", true)
	c, err := cs.Create(p.ID, f.bob, "mine")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	got, err := cs.Update(c.ID, f.alice, "hijacked")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Error("non-owner update should match nothing")
	}

	got, err = cs.Update(c.ID, f.bob, "edited")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got == nil || got.Content != "edited" {
		t.Fatalf("comment = %+v, want edited", got)
	}

	if owned, _ := cs.GetOwned(c.ID, f.alice); owned != nil {
		t.Error("GetOwned should hide comments owned by others")
	}

	ok, err := cs.Delete(c.ID, f.alice)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok {
		t.Error("non-owner delete should match nothing")
	}
	ok, err = cs.Delete(c.ID, f.bob)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("owner delete should remove the comment")
	}
}
