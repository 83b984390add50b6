// ABOUTME: Tests for document and chunk storage operations
// ABOUTME: Verifies versions, supersession, chunk replacement and citation sources
package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/carrierfit/internal/models"
)

func TestSaveAndGetDocument(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	mustSaveCarrier(t, store, "acme", "Acme Life", 1)

	doc, chunks := testDocument(t, "acme", "Field Guide", "Build chart limits apply. Tobacco rates apply.")
	if err := store.SaveDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	got, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Title != "Field Guide" {
		t.Errorf("Title = %v, want Field Guide", got.Title)
	}
	if got.Version != 1 {
		t.Errorf("Version = %v, want 1", got.Version)
	}
	if !got.EffectiveDate.Equal(doc.EffectiveDate) {
		t.Errorf("EffectiveDate = %v, want %v", got.EffectiveDate, doc.EffectiveDate)
	}
	if got.SourceLocation != doc.SourceLocation {
		t.Errorf("SourceLocation = %v, want %v", got.SourceLocation, doc.SourceLocation)
	}
	if got.IsSuperseded() {
		t.Error("new document should not be superseded")
	}

	stored, err := store.GetChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("GetChunks() count = %d, want 2", len(stored))
	}
	if stored[1].Section != "Tobacco" || stored[1].OverlapLen != 2 {
		t.Errorf("chunk[1] = %+v, want Tobacco section with overlap 2", stored[1])
	}
	if stored[0].Body()+stored[1].Body() != "Build chart limits apply. Tobacco rates apply." {
		t.Error("chunk bodies should concatenate to the document text")
	}
}

func TestSaveDocumentUnknownCarrier(t *testing.T) {
	store := newTestStorage(t)

	doc, chunks := testDocument(t, "ghost", "Field Guide", "Build chart limits apply.")
	if err := store.SaveDocument(context.Background(), doc, chunks); err == nil {
		t.Error("SaveDocument() should fail when the carrier is not registered")
	}
}

func TestSaveDocumentReplacesChunks(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	mustSaveCarrier(t, store, "acme", "Acme Life", 1)

	doc, chunks := testDocument(t, "acme", "Field Guide", "Build chart limits apply. Tobacco rates apply.")
	if err := store.SaveDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if err := store.SaveDocument(ctx, doc, chunks[:1]); err != nil {
		t.Fatalf("SaveDocument() second call error = %v", err)
	}

	stored, err := store.GetChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("GetChunks() count = %d, want 1", len(stored))
	}
}

func TestLatestDocumentAndSupersede(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	mustSaveCarrier(t, store, "acme", "Acme Life", 1)

	latest, err := store.LatestDocument(ctx, "acme", "Field Guide")
	if err != nil {
		t.Fatalf("LatestDocument() error = %v", err)
	}
	if latest != nil {
		t.Fatalf("LatestDocument() = %+v, want nil", latest)
	}

	v1, c1 := testDocument(t, "acme", "Field Guide", "Build chart limits apply. Tobacco rates apply.")
	if err := store.SaveDocument(ctx, v1, c1); err != nil {
		t.Fatalf("SaveDocument(v1) error = %v", err)
	}
	v2, c2 := testDocument(t, "acme", "Field Guide", "Build chart limits changed. Tobacco rates apply.")
	v2.Version = 2
	if err := store.SaveDocument(ctx, v2, c2); err != nil {
		t.Fatalf("SaveDocument(v2) error = %v", err)
	}
	if err := store.MarkSuperseded(ctx, v1.ID, v2.ID); err != nil {
		t.Fatalf("MarkSuperseded() error = %v", err)
	}

	latest, err = store.LatestDocument(ctx, "acme", "Field Guide")
	if err != nil {
		t.Fatalf("LatestDocument() error = %v", err)
	}
	if latest == nil || latest.ID != v2.ID {
		t.Fatalf("LatestDocument() = %+v, want v2", latest)
	}

	old, err := store.GetDocument(ctx, v1.ID)
	if err != nil {
		t.Fatalf("GetDocument(v1) error = %v", err)
	}
	if old.SupersededBy != v2.ID {
		t.Errorf("SupersededBy = %v, want %v", old.SupersededBy, v2.ID)
	}

	n, err := store.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountDocuments() = %d, want 1", n)
	}

	current, err := store.ListDocuments(ctx, "acme", false)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(current) != 1 {
		t.Errorf("ListDocuments(current) count = %d, want 1", len(current))
	}
	all, err := store.ListDocuments(ctx, "acme", true)
	if err != nil {
		t.Fatalf("ListDocuments(all) error = %v", err)
	}
	if len(all) != 2 || all[0].Version != 2 {
		t.Errorf("ListDocuments(all) = %d docs, want 2 with newest first", len(all))
	}

	// Re-saving v1 clears its superseded marker
	if err := store.SaveDocument(ctx, v1, c1); err != nil {
		t.Fatalf("SaveDocument(v1 again) error = %v", err)
	}
	old, err = store.GetDocument(ctx, v1.ID)
	if err != nil {
		t.Fatalf("GetDocument(v1) error = %v", err)
	}
	if old.IsSuperseded() {
		t.Error("re-saved document should not be superseded")
	}
}

func TestMarkSupersededMissing(t *testing.T) {
	store := newTestStorage(t)

	err := store.MarkSuperseded(context.Background(), "doc_missing", "doc_other")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("MarkSuperseded() error = %v, want ErrNotFound", err)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetDocument(context.Background(), "doc_missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetDocument() error = %v, want ErrNotFound", err)
	}
}

func TestCitationSources(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	mustSaveCarrier(t, store, "acme", "Acme Life", 1)

	text := "Build chart limits apply. Tobacco rates apply."
	doc, chunks := testDocument(t, "acme", "Field Guide", text)
	if err := store.SaveDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	sources, err := store.CitationSources(ctx, []string{chunks[1].ID, "chunk_missing"})
	if err != nil {
		t.Fatalf("CitationSources() error = %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("CitationSources() count = %d, want 1", len(sources))
	}

	src, ok := sources[chunks[1].ID]
	if !ok {
		t.Fatal("CitationSources() missing requested chunk")
	}
	if src.Body != text[len(text)/2:] {
		t.Errorf("Body = %q, want overlap stripped", src.Body)
	}
	if src.DocumentTitle != "Field Guide" {
		t.Errorf("DocumentTitle = %v, want Field Guide", src.DocumentTitle)
	}
	if src.Section != "Tobacco" {
		t.Errorf("Section = %v, want Tobacco", src.Section)
	}
	if !src.EffectiveDate.Equal(doc.EffectiveDate) {
		t.Errorf("EffectiveDate = %v, want %v", src.EffectiveDate, doc.EffectiveDate)
	}

	empty, err := store.CitationSources(ctx, nil)
	if err != nil {
		t.Fatalf("CitationSources(nil) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("CitationSources(nil) count = %d, want 0", len(empty))
	}
}

func TestSaveDocumentRejectsDuplicateVersion(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	mustSaveCarrier(t, store, "acme", "Acme Life", 1)

	first, c1 := testDocument(t, "acme", "Field Guide", "Build chart limits apply. Tobacco rates apply.")
	if err := store.SaveDocument(ctx, first, c1); err != nil {
		t.Fatalf("SaveDocument(first) error = %v", err)
	}
	second, c2 := testDocument(t, "acme", "Field Guide", "Build chart limits changed. Tobacco rates apply.")
	if err := store.SaveDocument(ctx, second, c2); err == nil {
		t.Fatal("SaveDocument() should reject a second document with the same carrier, title and version")
	}
}
