package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/diewo77/go-crm-panel/internal/models"
)

// formBody is an encoded multipart/form-data payload.
type formBody struct {
	contentType string
	data        []byte
}

func encodeForm(fields [][2]string, fileField string, file *models.FileUpload) (*formBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, file.Filename))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &formBody{contentType: w.FormDataContentType(), data: buf.Bytes()}, nil
}

func aboutForm(u models.AboutUpdate) (*formBody, error) {
	fields := [][2]string{
		{"first_name", u.FirstName},
		{"last_name", u.LastName},
		{"email", u.Email},
		{"phone", u.Phone},
		{"country_code", u.CountryCode},
		{"company", u.Company},
		{"position", u.Position},
		{"_method", "PATCH"},
	}
	return encodeForm(fields, "profile_pic", u.ProfilePic)
}

func sharedFileForm(f models.FileUpload) (*formBody, error) {
	return encodeForm(nil, "shared_file", &f)
}
