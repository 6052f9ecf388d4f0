package proxy

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"fair-mapper/internal/common/logger"

	"github.com/gofiber/fiber/v3"
)

var log = logger.Get("proxy")

// client общий для всех запросов: соединения с апстримом переиспользуются.
var client = &http.Client{Timeout: 60 * time.Second}

// SetTimeout меняет таймаут запросов к апстримам.
func SetTimeout(d time.Duration) {
	client.Timeout = d
}

// ============================================================
// Proxy Handler
// ============================================================

// ProxyTo прокси запрос к другому сервису
func ProxyTo(targetURL string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return forwardRequest(c, withQuery(c, targetURL))
	}
}

// Pass проксирует запрос на base, отрезав от пути префикс strip
// и сохранив query string.
func Pass(base, strip string) fiber.Handler {
	base = strings.TrimSuffix(base, "/")
	return func(c fiber.Ctx) error {
		path := strings.TrimPrefix(c.Path(), strip)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return forwardRequest(c, withQuery(c, base+path))
	}
}

// Forward проксирует запрос по переданному URL (для динамических путей).
func Forward(c fiber.Ctx, targetURL string) error {
	return forwardRequest(c, targetURL)
}

func withQuery(c fiber.Ctx, targetURL string) string {
	q := string(c.Request().URI().QueryString())
	if q == "" {
		return targetURL
	}
	return targetURL + "?" + q
}

// forwardRequest проксирует любой метод с учетом multipart/raw.
func forwardRequest(c fiber.Ctx, targetURL string) error {
	log.WithFields(map[string]any{
		"method": c.Method(),
		"path":   c.Path(),
		"bytes":  len(c.Body()),
	}).Debugf("forwarding to %s", targetURL)

	contentType := c.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return sendRaw(c, targetURL, contentType)
	}

	return sendMultipart(c, targetURL)
}

func sendRaw(c fiber.Ctx, targetURL, contentType string) error {
	var body io.Reader
	if len(c.Body()) > 0 {
		body = bytes.NewReader(c.Body())
	}
	req, err := http.NewRequest(c.Method(), targetURL, body)
	if err != nil {
		log.WithError(err).Error("build request")
		return c.Status(500).JSON(fiber.Map{"error": "proxy failed"})
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return do(c, req)
}

func sendMultipart(c fiber.Ctx, targetURL string) error {
	form, err := c.MultipartForm()
	if err != nil {
		log.WithError(err).Warn("parse multipart")
		return c.Status(400).JSON(fiber.Map{"error": "invalid multipart data"})
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, files := range form.File {
		for _, fileHeader := range files {
			if err := copyFilePart(writer, key, fileHeader); err != nil {
				log.WithError(err).WithField("file", fileHeader.Filename).Warn("skip multipart file")
			}
		}
	}

	for key, values := range form.Value {
		for _, value := range values {
			writer.WriteField(key, value)
		}
	}

	writer.Close()

	req, err := http.NewRequest(c.Method(), targetURL, bytes.NewReader(body.Bytes()))
	if err != nil {
		log.WithError(err).Error("build multipart request")
		return c.Status(500).JSON(fiber.Map{"error": "proxy failed"})
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	return do(c, req)
}

func copyFilePart(writer *multipart.Writer, key string, fileHeader *multipart.FileHeader) error {
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, key, fileHeader.Filename))
	h.Set("Content-Type", fileHeader.Header.Get("Content-Type"))

	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func do(c fiber.Ctx, req *http.Request) error {
	if auth := c.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.WithError(err).WithField("url", req.URL.String()).Error("upstream unreachable")
		return c.Status(502).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return copyResponse(c, resp)
}

func copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Error("read upstream response")
		return c.Status(502).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
