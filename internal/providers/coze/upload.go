package coze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"imageprompt/internal/domain"
	"imageprompt/internal/infra"
)

type uploadData struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadFile sends the asset to the Coze file store and returns its handle.
func (c *Client) UploadFile(ctx context.Context, asset *domain.UploadedAsset) (*domain.RemoteFile, error) {
	if asset == nil || len(asset.Data) == 0 {
		return nil, errors.New("coze: upload requires file data")
	}
	filename := strings.TrimSpace(asset.Filename)
	if filename == "" {
		filename = "upload"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	if asset.MediaType != "" {
		header.Set("Content-Type", asset.MediaType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("coze: build upload part: %w", err)
	}
	if _, err := part.Write(asset.Data); err != nil {
		return nil, fmt.Errorf("coze: write upload part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("coze: close upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("coze: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.log(ctx).Debug().
		Str("file_name", filename).
		Int64("file_size", int64(len(asset.Data))).
		Str("file_type", asset.MediaType).
		Str("token", infra.MaskToken(c.apiKey)).
		Msg("coze: uploading file")

	env, err := c.do(req, domain.StageUpload)
	if err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, &domain.UpstreamError{Stage: domain.StageUpload, Code: env.Code, Message: env.Msg}
	}

	var data uploadData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, &domain.ProtocolError{Stage: domain.StageUpload, Message: "decode file data: " + err.Error()}
		}
	}
	if strings.TrimSpace(data.ID) == "" {
		return nil, &domain.ProtocolError{Stage: domain.StageUpload, Message: "response is missing file id"}
	}

	c.log(ctx).Debug().Str("file_id", data.ID).Msg("coze: file uploaded")
	return &domain.RemoteFile{
		ID:       data.ID,
		Name:     data.FileName,
		Size:     data.FileSize,
		FileType: data.FileType,
	}, nil
}
