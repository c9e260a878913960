package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestHoistInlineImagesNoMatches(t *testing.T) {
	store := newFakeBlobStore()

	for _, content := range []string{
		"",
		"plain text without images",
		"almost data:image/gif;base64,QUJD but gif is not allowed",
		"<img src=\"https://store/already-hosted.png\" />",
	} {
		rewritten, hoisted, err := HoistInlineImages(store, content, "7")
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", content, err)
		}
		if rewritten != content {
			t.Fatalf("expected content unchanged, got %q", rewritten)
		}
		if len(hoisted) != 0 {
			t.Fatalf("expected no hoisted images, got %d", len(hoisted))
		}
	}

	if store.putCount() != 0 {
		t.Fatalf("expected zero uploads, got %d", store.putCount())
	}
}

func TestHoistInlineImagesRewritesInOrder(t *testing.T) {
	store := newFakeBlobStore()
	content := "intro data:image/png;base64,QUJD middle data:image/jpeg;base64,REVG outro"

	rewritten, hoisted, err := HoistInlineImages(store, content, "7")
	if err != nil {
		t.Fatalf("failed to hoist: %v", err)
	}
	if len(hoisted) != 2 || store.putCount() != 2 {
		t.Fatalf("expected exactly 2 uploads, got %d hoisted / %d puts", len(hoisted), store.putCount())
	}

	if string(store.objects[hoisted[0].URL]) != "ABC" {
		t.Fatalf("first upload should contain decoded QUJD, got %q", store.objects[hoisted[0].URL])
	}
	if string(store.objects[hoisted[1].URL]) != "DEF" {
		t.Fatalf("second upload should contain decoded REVG, got %q", store.objects[hoisted[1].URL])
	}

	want := fmt.Sprintf(`intro <img src=%q /> middle <img src=%q /> outro`, hoisted[0].URL, hoisted[1].URL)
	if rewritten != want {
		t.Fatalf("unexpected rewrite:\n got %q\nwant %q", rewritten, want)
	}

	if !strings.HasSuffix(hoisted[0].URL, ".png") || !strings.HasSuffix(hoisted[1].URL, ".jpeg") {
		t.Fatalf("expected subtype-derived filenames, got %q and %q", hoisted[0].URL, hoisted[1].URL)
	}
	if hoisted[0].URL == hoisted[1].URL {
		t.Fatalf("expected distinct storage keys within one request")
	}
}

func TestHoistInlineImagesConsumesEditorArtifactTag(t *testing.T) {
	store := newFakeBlobStore()
	content := "hello <img> data:image/png;base64,QUJD world"

	rewritten, hoisted, err := HoistInlineImages(store, content, "7")
	if err != nil {
		t.Fatalf("failed to hoist: %v", err)
	}
	if len(hoisted) != 1 {
		t.Fatalf("expected one hoisted image, got %d", len(hoisted))
	}

	want := fmt.Sprintf(`hello <img src=%q /> world`, hoisted[0].URL)
	if rewritten != want {
		t.Fatalf("unexpected rewrite:\n got %q\nwant %q", rewritten, want)
	}
	if string(store.objects[hoisted[0].URL]) != "ABC" {
		t.Fatalf("upload should contain decoded QUJD, got %q", store.objects[hoisted[0].URL])
	}
}

func TestHoistInlineImagesDecodeError(t *testing.T) {
	store := newFakeBlobStore()
	// 第二个匹配的 payload 长度非法，首个匹配已上传的对象保持原样
	content := "a data:image/png;base64,QUJD b data:image/png;base64,QQ=A= c"

	_, _, err := HoistInlineImages(store, content, "7")
	if !errors.Is(err, ErrInlineImageDecode) {
		t.Fatalf("expected ErrInlineImageDecode, got %v", err)
	}
	if store.putCount() != 1 {
		t.Fatalf("expected the earlier match to remain uploaded, got %d puts", store.putCount())
	}
}

func TestHoistInlineImagesUploadError(t *testing.T) {
	store := newFakeBlobStore()
	store.putErr = errors.New("store unavailable")

	_, _, err := HoistInlineImages(store, "data:image/webp;base64,QUJD", "7")
	if err == nil || errors.Is(err, ErrInlineImageDecode) {
		t.Fatalf("expected upload error to propagate, got %v", err)
	}
}
