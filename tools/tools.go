package tools

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"ufbtstate/obj"
	"ufbtstate/rt"

	"github.com/h2non/filetype"
)

// NormalizeSeparators rewrites Windows separators to forward slashes.
func NormalizeSeparators(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// ArtifactKind sniffs the file type from its header and returns the matched
// extension, or "unknown".
func ArtifactKind(filePath string) (string, error) {
	if rt.Config.DebugMode {
		log.Printf("Determining file type for: %s\n", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", &obj.MissingFileError{Path: filePath, Err: err}
	}
	defer file.Close()

	// Read first 261 bytes for detection
	buf := make([]byte, 261)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	if n == 0 {
		return "unknown", nil
	}

	kind, err := filetype.Match(buf[:n])
	if err != nil || kind == filetype.Unknown {
		if rt.Config.DebugMode {
			log.Printf("Unknown file type for: %s\n", filePath)
		}
		return "unknown", nil
	}

	if rt.Config.DebugMode {
		log.Printf("File: %s, Type: %s, MIME: %s\n", filePath, kind.Extension, kind.MIME.Value)
	}
	return kind.Extension, nil
}

// VerifyArtifacts checks that the firmware artifacts named by the
// configuration exist, that FW_ELF is an ELF image and, when the state
// recorded a checksum, that FW_BIN matches it.
func VerifyArtifacts(cfg obj.ResolvedConfiguration) error {
	elfPath, err := cfg.ELF()
	if err != nil {
		return err
	}
	binPath, err := cfg.Bin()
	if err != nil {
		return err
	}

	kind, err := ArtifactKind(elfPath)
	if err != nil {
		return err
	}
	if kind != "elf" {
		return &obj.MalformedDescriptorError{Path: elfPath, Reason: fmt.Sprintf("firmware image is %s, not elf", kind)}
	}

	if _, err := os.Stat(binPath); err != nil {
		return &obj.MissingFileError{Path: binPath, Err: err}
	}
	if cfg.FirmwareBinSHA256 != "" && !IsFileValid(binPath, cfg.FirmwareBinSHA256) {
		return &obj.MalformedDescriptorError{Path: binPath, Reason: "sha256 mismatch"}
	}
	return nil
}

func IsFileValid(filePath, expectedSHA256 string) bool {
	calculatedSHA256 := calculateSHA256(filePath)
	return calculatedSHA256 != "" && calculatedSHA256 == strings.ToLower(expectedSHA256)
}

func calculateSHA256(filePath string) string {
	hash := sha256.New()

	file, err := os.Open(filePath)
	if err != nil {
		log.Printf("Error opening file: %s\n", err.Error())
		return ""
	}
	defer file.Close()

	_, err = io.Copy(hash, file)
	if err != nil {
		log.Printf("Error copying file: %s\n", err.Error())
		return ""
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}
