package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/term"

	"healthmate/internal/client"
)

// readPassword es un seam para term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal es un seam para term.IsTerminal.
var isTerminal = term.IsTerminal

func readLine(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret lee sin eco si stdin es una terminal; si no, lee una linea.
func readSecret(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return readLine(reader, w, prompt)
	}
	fmt.Fprint(w, prompt)
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// parseFileCommand interpreta "/file <ruta> [prompt]".
func parseFileCommand(line string) (path, prompt string, ok bool) {
	rest, found := strings.CutPrefix(line, "/file ")
	if !found {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", false
	}
	path, prompt, _ = strings.Cut(rest, " ")
	return path, strings.TrimSpace(prompt), true
}

func loadUpload(path string) (*client.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	mimeType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return &client.Upload{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
