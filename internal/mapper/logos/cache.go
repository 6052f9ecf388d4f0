package logos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"fair-mapper/internal/common/logger"

	_ "golang.org/x/image/webp"
)

var log = logger.Get("logos")

const (
	maxLogoBytes      = 8 << 20
	maxLogoSide       = 4096
	defaultRetryAfter = 5 * time.Minute
)

// Resolver переводит URL локального ассета в путь к файлу.
type Resolver interface {
	Resolve(url string) (string, error)
}

type entry struct {
	img      image.Image
	loading  bool
	failedAt time.Time
}

// ============================================================
// Logo Cache
// ============================================================

// Cache: асинхронный кеш логотипов магазинов. Logo никогда не блокирует:
// если картинки еще нет, загрузка запускается в фоне, а кадр рисуется
// без логотипа.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup

	client     *http.Client
	assets     Resolver
	timeout    time.Duration
	retryAfter time.Duration
	now        func() time.Time
}

func NewCache(assets Resolver, timeout time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		client:     &http.Client{Timeout: timeout},
		assets:     assets,
		timeout:    timeout,
		retryAfter: defaultRetryAfter,
		now:        time.Now,
	}
}

// Logo возвращает декодированный логотип, если он уже загружен.
func (c *Cache) Logo(url string) (image.Image, bool) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	switch {
	case ok && e.img != nil:
		return e.img, true
	case ok && e.loading:
		return nil, false
	case ok && c.now().Sub(e.failedAt) < c.retryAfter:
		return nil, false
	}

	c.entries[url] = &entry{loading: true}
	c.wg.Add(1)
	go c.fetch(url)
	return nil, false
}

// Wait дожидается завершения начатых загрузок.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) fetch(url string) {
	defer c.wg.Done()

	img, err := c.load(url)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.WithError(err).WithField("url", url).Warn("logo fetch failed")
		c.entries[url] = &entry{failedAt: c.now()}
		return
	}
	c.entries[url] = &entry{img: img}
}

func (c *Cache) load(url string) (image.Image, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return c.download(url)
	}
	if c.assets == nil {
		return nil, fmt.Errorf("no asset resolver for %s", url)
	}

	path, err := c.assets.Resolve(url)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

func (c *Cache) download(url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logo %s: status %d", url, resp.StatusCode)
	}
	return decode(resp.Body)
}

func decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxLogoBytes))
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	if cfg.Width > maxLogoSide || cfg.Height > maxLogoSide {
		return nil, fmt.Errorf("decode logo: image too large: %dx%d", cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}
