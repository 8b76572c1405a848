package spclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

// GetFile returns a file by server relative URL.
func (s *Service) GetFile(ctx context.Context, siteURL, fileURL string, opts ...odata.QueryOption) (*sharepoint.File, error) {
	siteURL, err := s.pathArgs(siteURL, "file url", fileURL)
	if err != nil {
		return nil, err
	}
	f, err := getEntity[sharepoint.File](ctx, s, siteURL, fileByURLPath(fileURL), opts)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileURL, err)
	}
	return f, nil
}

// GetFileByID returns a file by its UniqueId.
func (s *Service) GetFileByID(ctx context.Context, siteURL, uniqueID string, opts ...odata.QueryOption) (*sharepoint.File, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	uniqueID, err = validateGUID("file id", uniqueID)
	if err != nil {
		return nil, err
	}
	f, err := getEntity[sharepoint.File](ctx, s, siteURL, "_api/web/GetFileById('"+uniqueID+"')", opts)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", uniqueID, err)
	}
	return f, nil
}

// GetFiles returns the files directly inside a folder.
func (s *Service) GetFiles(ctx context.Context, siteURL, folderURL string, opts ...odata.QueryOption) ([]sharepoint.File, error) {
	siteURL, err := s.pathArgs(siteURL, "folder url", folderURL)
	if err != nil {
		return nil, err
	}
	files, err := getCollection[sharepoint.File](ctx, s, siteURL, folderByURLPath(folderURL)+"/Files", opts)
	if err != nil {
		return nil, fmt.Errorf("get files of %s: %w", folderURL, err)
	}
	return files, nil
}

// GetFileVersions returns the previous versions of a file. The current
// version is not included.
func (s *Service) GetFileVersions(ctx context.Context, siteURL, fileURL string, opts ...odata.QueryOption) ([]sharepoint.FileVersion, error) {
	siteURL, err := s.pathArgs(siteURL, "file url", fileURL)
	if err != nil {
		return nil, err
	}
	versions, err := getCollection[sharepoint.FileVersion](ctx, s, siteURL, fileByURLPath(fileURL)+"/Versions", opts)
	if err != nil {
		return nil, fmt.Errorf("get versions of %s: %w", fileURL, err)
	}
	return versions, nil
}

// DownloadFile streams the content of a file. The caller must close the
// returned reader.
func (s *Service) DownloadFile(ctx context.Context, siteURL, fileURL string) (io.ReadCloser, error) {
	siteURL, err := s.pathArgs(siteURL, "file url", fileURL)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(ctx, &request{method: http.MethodGet, siteURL: siteURL, path: fileByURLPath(fileURL) + "/$value"})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileURL, err)
	}
	return resp.Body, nil
}

// UploadFile writes content as name inside folderURL. The content is
// buffered so the request can be retried.
func (s *Service) UploadFile(ctx context.Context, siteURL, folderURL, name string, content io.Reader, overwrite bool) (*sharepoint.File, error) {
	siteURL, err := s.pathArgs(siteURL, "folder url", folderURL)
	if err != nil {
		return nil, err
	}
	if err := requireValue("file name", name); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("%w: nil content", ErrInvalidArgument)
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}

	path := fmt.Sprintf("%s/Files/add(url=%s,overwrite=%t)", folderByURLPath(folderURL), quote(name), overwrite)
	resp, err := s.send(ctx, &request{
		method:      http.MethodPost,
		siteURL:     siteURL,
		path:        path,
		body:        data,
		contentType: "application/octet-stream",
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s to %s: %w", name, folderURL, err)
	}
	return sharepoint.Decode[sharepoint.File](resp.body, resp.contentType)
}

func (s *Service) DeleteFile(ctx context.Context, siteURL, fileURL string) error {
	siteURL, err := s.pathArgs(siteURL, "file url", fileURL)
	if err != nil {
		return err
	}
	if err := s.delete(ctx, siteURL, fileByURLPath(fileURL)); err != nil {
		return fmt.Errorf("delete file %s: %w", fileURL, err)
	}
	return nil
}

// RecycleFile moves a file to the recycle bin.
func (s *Service) RecycleFile(ctx context.Context, siteURL, fileURL string) (string, error) {
	siteURL, err := s.pathArgs(siteURL, "file url", fileURL)
	if err != nil {
		return "", err
	}
	id, err := s.recycle(ctx, siteURL, fileByURLPath(fileURL))
	if err != nil {
		return "", fmt.Errorf("recycle file %s: %w", fileURL, err)
	}
	return id, nil
}

func (s *Service) CheckOutFile(ctx context.Context, siteURL, fileURL string) error {
	siteURL, err := s.pathArgs(siteURL, "file url", fileURL)
	if err != nil {
		return err
	}
	if err := s.call(ctx, siteURL, fileByURLPath(fileURL)+"/CheckOut()", nil); err != nil {
		return fmt.Errorf("check out %s: %w", fileURL, err)
	}
	return nil
}

func (s *Service) CheckInFile(ctx context.Context, siteURL, fileURL, comment string, checkinType sharepoint.CheckinType) error {
	siteURL, err := s.pathArgs(siteURL, "file url", fileURL)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s/CheckIn(comment=%s,checkintype=%d)", fileByURLPath(fileURL), quote(comment), checkinType)
	if err := s.call(ctx, siteURL, path, nil); err != nil {
		return fmt.Errorf("check in %s: %w", fileURL, err)
	}
	return nil
}

func (s *Service) pathArgs(siteURL, name, serverRelativeURL string) (string, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return "", err
	}
	if err := requireValue(name, serverRelativeURL); err != nil {
		return "", err
	}
	return siteURL, nil
}
