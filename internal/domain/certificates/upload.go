package certificates

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"plenum/internal/platform/ids"
	"plenum/internal/platform/storage"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeName keeps only the base name of a client file name and replaces whitespace runs with "_".
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// ContentTypeFor returns the stored content type for an allowed file name.
// The extension decides; a client-declared content type is never trusted.
func ContentTypeFor(name string) (string, error) {
	contentType, ok := allowedTypes[strings.ToLower(path.Ext(name))]
	if !ok {
		return "", ErrUnsupportedType
	}
	return contentType, nil
}

// Upload stores a new certificate file under the identity's scope without overwriting,
// records advisory metadata and returns the object path with one freshly signed link.
func (i *Issuer) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if req.Identity.Empty() {
		i.countUpload(uploadResultRejected)
		return UploadResult{}, ErrMissingIdentity
	}
	name := SanitizeName(req.FileName)
	if name == "" || len(req.Body) == 0 {
		i.countUpload(uploadResultRejected)
		return UploadResult{}, ErrMissingFile
	}

	scope, err := i.Resolve(ctx, req.Identity)
	if err != nil {
		i.countUpload(uploadResultRejected)
		return UploadResult{}, err
	}

	contentType, err := ContentTypeFor(name)
	if err != nil {
		i.Logger.WarnContext(ctx, "certificate upload rejected",
			"reason", "unsupported_type",
			"file", name,
			"declaredType", req.ContentType,
		)
		i.countUpload(uploadResultRejected)
		return UploadResult{}, err
	}

	key, ok := scope.Key(fmt.Sprintf("%d_%s", i.Now().UnixMilli(), name))
	if !ok {
		i.countUpload(uploadResultRejected)
		return UploadResult{}, ErrMissingFile
	}

	if err := i.Objects.PutNew(ctx, key, req.Body, contentType); err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			i.countUpload(uploadResultConflict)
			return UploadResult{}, ErrConflict
		}
		i.countUpload(uploadResultFailed)
		return UploadResult{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	i.countUpload(uploadResultOK)

	meta := i.recordMetadata(ctx, scope, key, req)
	if meta.Err != nil {
		i.Logger.Warn("certificate metadata not recorded", "path", key, "err", meta.Err)
	}

	return UploadResult{
		Scope:    scope,
		Path:     key,
		URL:      i.sign(ctx, key),
		Metadata: meta,
	}, nil
}

func (i *Issuer) recordMetadata(ctx context.Context, scope Scope, key string, req UploadRequest) MetadataResult {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = DefaultLabel
	}
	rec := Record{
		ID:         ids.NewAt(i.Now()),
		EmployeeID: scope.EmployeeID,
		Label:      label,
		FilePath:   key,
		DueDate:    req.DueDate,
	}
	if err := i.Store.RecordCertificate(ctx, rec); err != nil {
		return MetadataResult{Err: err}
	}
	return MetadataResult{Recorded: true}
}

func (i *Issuer) countUpload(result string) {
	if i.Metrics != nil {
		i.Metrics.Upload(result)
	}
}

// Records returns the advisory ledger rows of an employee in the given company.
func (i *Issuer) Records(ctx context.Context, id Identity) ([]Record, error) {
	scope, err := i.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return i.Store.ListRecords(ctx, scope.EmployeeID)
}
