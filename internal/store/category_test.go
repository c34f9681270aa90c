package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"quillpress/internal/models"
)

func TestCategoryStoreTree(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	tech := testCategory(t, db, "Technology", nil)
	web := testCategory(t, db, "Web Development", &tech.ID)

	tree, err := s.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	var found *models.CategoryNode
	for _, root := range tree {
		if root.ID == tech.ID {
			found = root
		}
		if root.ID == web.ID {
			t.Error("child category listed as a root")
		}
	}
	if found == nil {
		t.Fatal("Technology not found among roots")
	}
	if len(found.Children) != 1 || found.Children[0].ID != web.ID {
		t.Errorf("Technology children: got %d, want [Web Development]", len(found.Children))
	}
}

func TestCategoryStoreCreateMissingParent(t *testing.T) {
	db := testDB(t)
	missing := uuid.New()
	_, err := NewCategoryStore(db).Create(context.Background(), models.CategoryInput{
		Name: "Orphan", Slug: "orphan-" + suffix(), ParentID: &missing,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryStoreDuplicateSlug(t *testing.T) {
	db := testDB(t)
	first := testCategory(t, db, "First", nil)
	_, err := NewCategoryStore(db).Create(context.Background(), models.CategoryInput{
		Name: "Second", Slug: first.Slug,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCategoryStoreUpdateRejectsCycles(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	a := testCategory(t, db, "A", nil)
	b := testCategory(t, db, "B", &a.ID)
	c := testCategory(t, db, "C", &b.ID)

	_, err := s.Update(ctx, a.ID, models.CategoryPatch{ParentID: models.Set(a.ID)})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("self parent: expected ErrInvalidOperation, got %v", err)
	}

	_, err = s.Update(ctx, a.ID, models.CategoryPatch{ParentID: models.Set(c.ID)})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("descendant parent: expected ErrInvalidOperation, got %v", err)
	}

	_, err = s.Update(ctx, a.ID, models.CategoryPatch{ParentID: models.Set(uuid.New())})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing parent: expected ErrNotFound, got %v", err)
	}

	// Moving a leaf to the root and renaming is fine.
	updated, err := s.Update(ctx, c.ID, models.CategoryPatch{
		ParentID: models.Null[uuid.UUID](),
		Name:     models.Set("C renamed"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ParentID != nil {
		t.Error("expected parent to be cleared")
	}
	if updated.Name != "C renamed" {
		t.Errorf("name: got %q", updated.Name)
	}
	if updated.Slug != c.Slug {
		t.Errorf("slug changed although absent from patch: %q", updated.Slug)
	}
}

func TestCategoryStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	author := testAuthor(t, db)

	parent := testCategory(t, db, "Parent", nil)
	child := testCategory(t, db, "Child", &parent.ID)
	post := testPost(t, db, author, models.PostInput{CategoryID: &parent.ID})

	if err := s.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := s.FindByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("FindByID child: %v", err)
	}
	if got.ParentID != nil {
		t.Error("child still has a parent after delete")
	}

	p, err := NewPostStore(db).FindByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("FindByID post: %v", err)
	}
	if p.CategoryID != nil {
		t.Error("post still references deleted category")
	}

	if err := s.Delete(ctx, parent.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestCategoryStoreFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	c := testCategory(t, db, "Findable", nil)

	got, err := s.FindBySlug(context.Background(), c.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("id: got %s, want %s", got.ID, c.ID)
	}

	if _, err := s.FindBySlug(context.Background(), "no-such-"+suffix()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
