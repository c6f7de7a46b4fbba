package main

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteDigestFile archives one digest body in the report output dir so a run's
// notifications can be inspected after the fact.
func WriteDigestFile(content, outputDir string, runDate time.Time, digestName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.txt", sanitizeFilename(digestName), runDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}

// WriteEmailDraftFile writes an .eml draft for an alert that could not be
// sent over SMTP.
func WriteEmailDraftFile(body, outputDir string, runDate time.Time, subjectPrefix string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.eml", sanitizeFilename(subjectPrefix), runDate.Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)
	subject := fmt.Sprintf("%s %s", subjectPrefix, runDate.Format("20060102"))
	content := buildEML(subject, body)
	return path, os.WriteFile(path, []byte(content), 0644)
}

func buildEML(subject, body string) string {
	const boundary = "feedbackbot-alt"
	headers := []string{
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
		fmt.Sprintf("Subject: %s", subject),
	}
	plain := normalizeCRLF(body)
	htmlBody := bodyToHTML(body)

	var out strings.Builder
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")
	out.WriteString("--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(plain)
	if !strings.HasSuffix(plain, "\r\n") {
		out.WriteString("\r\n")
	}
	out.WriteString("\r\n--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(htmlBody)
	out.WriteString("\r\n--" + boundary + "--\r\n")
	return out.String()
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", "@", "_", " ", "_")
	return replacer.Replace(s)
}

func normalizeCRLF(s string) string {
	normalized := strings.ReplaceAll(s, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\n", "\r\n")
	return normalized
}

func bodyToHTML(body string) string {
	escaped := html.EscapeString(strings.ReplaceAll(body, "\r\n", "\n"))
	escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
	return `<html><body style="font-family: Calibri, Arial, sans-serif; font-size: 11pt; color: #1f1f1f; line-height: 1.35;">` + escaped + `</body></html>`
}
