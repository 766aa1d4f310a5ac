package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps JSON bodies and uploaded backups
const maxBodyBytes = 10 << 20

var errBodyTooLarge = errors.New("dữ liệu gửi lên quá lớn")

// readBody reads at most maxBodyBytes and restores the body for later reads
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// BindNestedOrFlat accepts both {"debtor": {...}} and {...} bodies.
// When key is present its value is decoded into obj; otherwise the whole body is.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	bodyBytes, err := readBody(c)
	if err != nil {
		return err
	}

	var nestedMap map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &nestedMap); err == nil {
		if val, ok := nestedMap[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}
	return json.Unmarshal(bodyBytes, obj)
}

// readUpload returns the backup file from a multipart "file" field or, failing that, the raw body
func readUpload(c *gin.Context) (name string, data []byte, err error) {
	if fh, ferr := c.FormFile("file"); ferr == nil {
		if fh.Size > maxBodyBytes {
			return "", nil, errBodyTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxBodyBytes))
		if err != nil {
			return "", nil, fmt.Errorf("read upload: %w", err)
		}
		return fh.Filename, data, nil
	}

	data, err = readBody(c)
	if err != nil {
		return "", nil, err
	}
	return c.Query("filename"), data, nil
}

// sendFile writes a download with its file name
func sendFile(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, data)
}
