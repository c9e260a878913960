package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/foodlog/internal/storage"
)

// ErrInlineImageDecode 表示正文中的内联图片不是合法的 base64。
var ErrInlineImageDecode = errors.New("inline image payload is not valid base64")

// 内联图片模式：可选的编辑器残留 <img> 标签，后跟允许类型的 data URI。
var inlineImagePattern = regexp.MustCompile(`(?:<img[^>]*>\s*)?data:image/(png|jpeg|jpg|webp|bmp);base64,([A-Za-z0-9+/=]+)`)

// HoistedImage 描述一张已外提到对象存储的图片。
type HoistedImage struct {
	URL    string
	Width  int
	Height int
}

// HoistInlineImages 对正文做单次从左到右扫描，把每个内联 base64 图片解码后
// 上传到对象存储，并将匹配片段改写为 <img src="URL" /> 引用。
// 匹配均基于原始正文定位，改写结果不会被二次扫描。
// 无匹配时原样返回正文。解码或上传失败立即中止；此前已上传的对象不回滚。
func HoistInlineImages(store storage.BlobStore, content, ownerKey string) (string, []HoistedImage, error) {
	if !strings.Contains(content, "data:image/") {
		return content, nil, nil
	}

	matches := inlineImagePattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil, nil
	}

	var out strings.Builder
	hoisted := make([]HoistedImage, 0, len(matches))
	stamp := time.Now().UnixMilli()
	last := 0

	for i, m := range matches {
		subtype := content[m[2]:m[3]]
		payload := content[m[4]:m[5]]

		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInlineImageDecode, err)
		}

		// 时间戳加序号保证同一请求内的键不冲突
		filename := fmt.Sprintf("inline-%d-%d.%s", stamp, i, subtype)
		url, err := store.Put(ownerKey, filename, data)
		if err != nil {
			return "", nil, err
		}

		width, height := probeImageDimensions(data)

		out.WriteString(content[last:m[0]])
		fmt.Fprintf(&out, `<img src=%q />`, url)
		last = m[1]

		hoisted = append(hoisted, HoistedImage{URL: url, Width: width, Height: height})
	}
	out.WriteString(content[last:])

	return out.String(), hoisted, nil
}

// probeImageDimensions 尝试读取图片尺寸；无法识别的格式返回零值而不报错。
func probeImageDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
