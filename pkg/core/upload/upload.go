package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	apperr "staybook/pkg/common/errors"
)

// 下载链接时最多跟随的重定向次数
const maxRedirects = 5

// Fetcher 下载远程图片，*client.Client 满足该接口
type Fetcher interface {
	DoRedirects(ctx context.Context, req *protocol.Request, resp *protocol.Response, maxRedirectsCount int) error
}

// Store 把照片写入固定目录，该目录同时以静态文件方式对外提供
type Store struct {
	dir         string
	maxFiles    int
	maxLinkSize int64
	fetcher     Fetcher
	now         func() time.Time
}

// NewHTTPFetcher 下载链接用的 hertz 客户端，响应体以流的方式读取，由 Store 限制大小
func NewHTTPFetcher(timeout time.Duration) (*client.Client, error) {
	return client.NewClient(
		client.WithClientReadTimeout(timeout),
		client.WithDialTimeout(timeout),
		client.WithResponseBodyStream(true),
	)
}

// NewStore 目录不存在时创建；maxLinkSize 为单张远程图片的字节上限
func NewStore(dir string, maxFiles int, maxLinkSize int64, fetcher Fetcher) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxFiles: maxFiles, maxLinkSize: maxLinkSize, fetcher: fetcher, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxFiles() int {
	return s.maxFiles
}

// SaveFromLink 下载图片并保存为 photo<毫秒时间戳>.jpg，返回文件名
func (s *Store) SaveFromLink(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: link must be an http(s) url", apperr.ErrInvalidInput)
	}

	body, err := s.download(ctx, u.String())
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("photo%d.jpg", s.now().UnixMilli())
	if err := os.WriteFile(filepath.Join(s.dir, name), body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

func (s *Store) download(ctx context.Context, link string) ([]byte, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(link)
	req.SetMethod(consts.MethodGet)
	if err := s.fetcher.DoRedirects(ctx, req, resp, maxRedirects); err != nil {
		return nil, fmt.Errorf("%w: download failed: %v", apperr.ErrInvalidInput, err)
	}
	defer resp.CloseBodyStream()

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: download failed with status %d", apperr.ErrInvalidInput, status)
	}
	if s.maxLinkSize > 0 && int64(resp.Header.ContentLength()) > s.maxLinkSize {
		return nil, fmt.Errorf("%w: remote file exceeds %d bytes", apperr.ErrInvalidInput, s.maxLinkSize)
	}

	var src io.Reader = resp.BodyStream()
	if src == nil {
		src = bytes.NewReader(resp.Body())
	}
	if s.maxLinkSize > 0 {
		// 多读一个字节用于判断是否超限
		src = io.LimitReader(src, s.maxLinkSize+1)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: download failed: %v", apperr.ErrInvalidInput, err)
	}
	if s.maxLinkSize > 0 && int64(len(body)) > s.maxLinkSize {
		return nil, fmt.Errorf("%w: remote file exceeds %d bytes", apperr.ErrInvalidInput, s.maxLinkSize)
	}
	return body, nil
}

// SaveFiles 保存上传的文件，保留原始扩展名，返回相对上传目录的文件名
func (s *Store) SaveFiles(files []*multipart.FileHeader) ([]string, error) {
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: at most %d files per upload", apperr.ErrInvalidInput, s.maxFiles)
	}

	names := make([]string, 0, len(files))
	for _, fh := range files {
		name := uuid.NewString() + filepath.Ext(filepath.Base(fh.Filename))
		if err := s.saveFile(fh, name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *Store) saveFile(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
