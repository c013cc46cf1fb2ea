package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apierrors "cbmflow/internal/errors"
)

// FileValidator checks uploaded workbooks and CLI file arguments
type FileValidator struct {
	logger            *slog.Logger
	maxSize           int64
	allowedExtensions []string
}

// NewFileValidator creates a file validator. A non-positive maxSize
// disables the size check; extensions are compared case-insensitively.
func NewFileValidator(logger *slog.Logger, maxSize int64, allowedExtensions []string) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, 0, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &FileValidator{
		logger:            logger.With(slog.String("component", "file_validator")),
		maxSize:           maxSize,
		allowedExtensions: exts,
	}
}

// MaxSize returns the configured upload limit in bytes.
func (v *FileValidator) MaxSize() int64 {
	return v.maxSize
}

// ValidateUpload checks an upload's name and size before it is parsed
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	if err := v.ValidateExtension(filename); err != nil {
		return err
	}
	if size == 0 {
		v.logger.Warn("Upload rejected: empty file", slog.String("filename", filename))
		return apierrors.ErrEmptyFile
	}
	if v.maxSize > 0 && size > v.maxSize {
		v.logger.Warn("Upload rejected: too large",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxSize))
		return apierrors.FileTooLarge(v.maxSize)
	}
	return nil
}

// ValidateExtension checks the file extension against the allowed list
func (v *FileValidator) ValidateExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(v.allowedExtensions) > 0 && !slices.Contains(v.allowedExtensions, ext) {
		v.logger.Warn("Upload rejected: unsupported file type",
			slog.String("filename", filename),
			slog.String("extension", ext))
		return apierrors.UnsupportedFileType(ext, v.allowedExtensions)
	}
	return nil
}

// ValidateFile checks that a workbook on disk exists, is a regular
// readable file and passes the upload rules
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	if err := v.ValidateUpload(filepath.Base(path), info.Size()); err != nil {
		return err
	}

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputPath ensures the directory of an output file exists or can
// be created and is writable
func (v *FileValidator) ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
