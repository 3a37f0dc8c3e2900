package decoder

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/mpexplorer/internal/errors"
	"github.com/mcncl/mpexplorer/internal/models"
)

// ReadFile loads a whole MessagePack file into memory
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	return data, nil
}

// DecodeFile decodes the first message of a file
func DecodeFile(filePath string, opts ...Option) (models.Item, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.Item{}, err
	}
	return decodeInput(data, opts)
}

// DecodeReader buffers r fully and decodes the first message. The decoder
// never works on a partial message.
func DecodeReader(r io.Reader, opts ...Option) (models.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Item{}, errors.NewInputError("failed to read input", err)
	}
	if len(data) == 0 {
		return models.Item{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}
	return decodeInput(data, opts)
}

func decodeInput(data []byte, opts []Option) (models.Item, error) {
	item, err := Decode(data, opts...)
	if err != nil {
		if offset, ok := errors.DecodeOffset(err); ok {
			return models.Item{}, errors.NewDecodingError(
				fmt.Sprintf("failed to decode message at offset %d", offset),
				err,
			)
		}
		return models.Item{}, errors.NewDecodingError("failed to decode message", err)
	}
	return item, nil
}
