package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/foodlog/internal/db"
)

func TestArticleCreateHoistsInlineImages(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	store := newFakeBlobStore()
	svc := NewArticleService(gdb, store, nil)
	member := createTestMember(t, gdb, "author@example.com", "author")

	article, err := svc.Create(member.ID, ArticleInput{
		Title:    "kimchi stew",
		Content:  "before data:image/png;base64,QUJD after",
		Category: "korean",
	}, []UploadedFile{{Name: "side.jpg", ContentType: "image/jpeg", Data: []byte{1, 2, 3}}})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	if article.LikeCount != 0 || article.CommentCount != 0 {
		t.Fatalf("expected zeroed counters, got %d/%d", article.LikeCount, article.CommentCount)
	}
	if store.putCount() != 2 {
		t.Fatalf("expected one inline and one file upload, got %d", store.putCount())
	}

	var images []db.ArticleImage
	if err := gdb.Where("article_id = ?", article.ID).Order("id asc").Find(&images).Error; err != nil {
		t.Fatalf("failed to load images: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 attached images, got %d", len(images))
	}

	want := fmt.Sprintf(`before <img src=%q /> after`, images[0].URL)
	if article.Content != want {
		t.Fatalf("unexpected rewritten content:\n got %q\nwant %q", article.Content, want)
	}
}

func TestArticleCreateUnknownMember(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(gdb, newFakeBlobStore(), nil)
	_, err := svc.Create(99, ArticleInput{Title: "t", Content: "c", Category: "k"}, nil)
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestArticleCreateMissingFields(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	store := newFakeBlobStore()
	svc := NewArticleService(gdb, store, nil)
	member := createTestMember(t, gdb, "author@example.com", "author")

	_, err := svc.Create(member.ID, ArticleInput{Title: " ", Content: "c", Category: "k"}, nil)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	// validation fails before any mutation
	if store.putCount() != 0 {
		t.Fatalf("expected no uploads on validation failure, got %d", store.putCount())
	}
}

func TestArticleUpdateReconcilesImages(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	store := newFakeBlobStore()
	svc := NewArticleService(gdb, store, nil)
	member := createTestMember(t, gdb, "author@example.com", "author")

	article, err := svc.Create(member.ID, ArticleInput{
		Title:    "original",
		Content:  "data:image/png;base64,QUJD",
		Category: "korean",
	}, []UploadedFile{{Name: "old.jpg", ContentType: "image/jpeg", Data: []byte{1}}})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	var before []db.ArticleImage
	if err := gdb.Where("article_id = ?", article.ID).Order("id asc").Find(&before).Error; err != nil {
		t.Fatalf("failed to load images: %v", err)
	}
	if len(before) != 2 {
		t.Fatalf("expected 2 images before update, got %d", len(before))
	}
	inlineURL, uploadedURL := before[0].URL, before[1].URL

	err = svc.Update(article.ID, member.ID, ArticleInput{
		Title:    "updated",
		Content:  "plain text now",
		Category: "japanese",
	}, []UploadedFile{{Name: "new.png", ContentType: "image/png", Data: []byte{2}}}, []string{uploadedURL})
	if err != nil {
		t.Fatalf("failed to update article: %v", err)
	}

	var after db.Article
	if err := gdb.Preload("Images").First(&after, article.ID).Error; err != nil {
		t.Fatalf("failed to reload article: %v", err)
	}
	if after.Title != "updated" || after.Category != "japanese" || after.Content != "plain text now" {
		t.Fatalf("expected fields to be updated, got %+v", after)
	}

	// 显式删除的 uploadedURL 消失；未被重新提交的 inlineURL 保留；新上传加入
	urls := make(map[string]bool)
	for _, img := range after.Images {
		urls[img.URL] = true
	}
	if len(after.Images) != 2 || !urls[inlineURL] || urls[uploadedURL] {
		t.Fatalf("unexpected final image set: %v", urls)
	}

	deleted := false
	for _, url := range store.deletes {
		if url == uploadedURL {
			deleted = true
		}
	}
	if !deleted {
		t.Fatalf("expected blob delete for %s, got %v", uploadedURL, store.deletes)
	}
	if _, ok := store.objects[inlineURL]; !ok {
		t.Fatalf("kept image must not be deleted from the blob store")
	}
}

func TestArticleUpdateOwnershipCheckedBeforeUploads(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	store := newFakeBlobStore()
	svc := NewArticleService(gdb, store, nil)
	author := createTestMember(t, gdb, "author@example.com", "author")
	intruder := createTestMember(t, gdb, "intruder@example.com", "intruder")

	article, err := svc.Create(author.ID, ArticleInput{Title: "t", Content: "c", Category: "k"}, nil)
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}
	putsBefore := store.putCount()

	err = svc.Update(article.ID, intruder.ID, ArticleInput{
		Title:    "hijacked",
		Content:  "data:image/png;base64,QUJD",
		Category: "k",
	}, []UploadedFile{{Name: "x.png", ContentType: "image/png", Data: []byte{1}}}, nil)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if store.putCount() != putsBefore {
		t.Fatalf("unauthorized update must not upload anything")
	}
}

func TestArticleUpdateNotFound(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(gdb, newFakeBlobStore(), nil)
	err := svc.Update(404, 1, ArticleInput{Title: "t", Content: "c", Category: "k"}, nil, nil)
	if !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleDeleteRemovesCommentForestAndBlobs(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	store := newFakeBlobStore()
	svc := NewArticleService(gdb, store, nil)
	comments := NewCommentService(gdb)
	author := createTestMember(t, gdb, "author@example.com", "author")
	reader := createTestMember(t, gdb, "reader@example.com", "reader")

	article, err := svc.Create(author.ID, ArticleInput{
		Title:    "t",
		Content:  "data:image/png;base64,QUJD",
		Category: "k",
	}, nil)
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	root, err := comments.Create(article.ID, reader.ID, "root", nil)
	if err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	child, err := comments.Create(article.ID, author.ID, "child", &root.ID)
	if err != nil {
		t.Fatalf("failed to create reply: %v", err)
	}
	if _, err := comments.Create(article.ID, reader.ID, "grandchild", &child.ID); err != nil {
		t.Fatalf("failed to create nested reply: %v", err)
	}

	if err := svc.Delete(article.ID, reader.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for non-author, got %v", err)
	}
	if err := svc.Delete(article.ID, author.ID); err != nil {
		t.Fatalf("failed to delete article: %v", err)
	}

	var commentCount int64
	if err := gdb.Model(&db.Comment{}).Where("article_id = ?", article.ID).Count(&commentCount).Error; err != nil {
		t.Fatalf("failed to count comments: %v", err)
	}
	if commentCount != 0 {
		t.Fatalf("expected comment forest to be removed, %d rows remain", commentCount)
	}

	var imageCount int64
	if err := gdb.Model(&db.ArticleImage{}).Where("article_id = ?", article.ID).Count(&imageCount).Error; err != nil {
		t.Fatalf("failed to count images: %v", err)
	}
	if imageCount != 0 {
		t.Fatalf("expected image rows to be removed, %d remain", imageCount)
	}

	if len(store.objects) != 0 {
		t.Fatalf("expected blobs to be deleted, %d remain", len(store.objects))
	}

	if _, err := svc.GetDetail(article.ID, 0); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected deleted article to be gone, got %v", err)
	}
}

func TestArticleListAndDetail(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(gdb, newFakeBlobStore(), nil)
	likes := NewLikeService(gdb, nil, nil)
	author := createTestMember(t, gdb, "author@example.com", "author")
	reader := createTestMember(t, gdb, "reader@example.com", "reader")

	article, err := svc.Create(author.ID, ArticleInput{
		Title:    "bibimbap",
		Content:  "data:image/png;base64,QUJD",
		Category: "korean",
	}, nil)
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	summaries, err := svc.ListAll()
	if err != nil {
		t.Fatalf("failed to list articles: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].AuthorNickname != "author" || summaries[0].FirstImageURL == "" {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}

	if _, err := likes.Toggle(article.ID, reader.ID); err != nil {
		t.Fatalf("failed to toggle like: %v", err)
	}

	detail, err := svc.GetDetail(article.ID, reader.ID)
	if err != nil {
		t.Fatalf("failed to get detail: %v", err)
	}
	if !detail.MyLike || detail.MyArticle {
		t.Fatalf("expected reader view with myLike=true myArticle=false, got %+v", detail)
	}
	if detail.LikeCount != 1 {
		t.Fatalf("expected like count 1, got %d", detail.LikeCount)
	}

	anonymous, err := svc.GetDetail(article.ID, 0)
	if err != nil {
		t.Fatalf("failed to get anonymous detail: %v", err)
	}
	if anonymous.MyLike || anonymous.MyArticle {
		t.Fatalf("anonymous view must not carry viewer flags")
	}

	mine, err := svc.ListByMember(author.ID)
	if err != nil {
		t.Fatalf("failed to list own articles: %v", err)
	}
	if len(mine) != 1 || len(mine[0].Images) != 1 {
		t.Fatalf("unexpected my-article list: %+v", mine)
	}
}
