package executor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
)

// ageHeaderMagic is the first line of every well-formed age file.
const ageHeaderMagic = "age-encryption.org/v1"

// EncryptArtifact wraps path with an age recipient loaded from keyPath,
// per spec §4.5 step 9. The encrypted file adopts a ".age" suffix and the
// original compressed artifact is removed once the encrypted copy is
// verified.
func EncryptArtifact(path, keyPath string) (string, error) {
	recipients, err := loadRecipients(keyPath)
	if err != nil {
		return "", fmt.Errorf("loading encryption recipients: %w", err)
	}

	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	outPath := path + ".age"
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w, err := age.Encrypt(out, recipients...)
	if err != nil {
		return "", fmt.Errorf("age encrypt: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	if err := verifyAgeHeader(outPath); err != nil {
		os.Remove(outPath)
		return "", err
	}
	os.Remove(path)
	return outPath, nil
}

// loadRecipients reads one X25519 recipient per non-comment, non-blank
// line, the format age's own CLI uses for recipients files.
func loadRecipients(keyPath string) ([]age.Recipient, error) {
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recipients []age.Recipient
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r, err := age.ParseX25519Recipient(line)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in %s", keyPath)
	}
	return recipients, nil
}

// verifyAgeHeader re-reads just the magic line of the age format, per
// §4.5 step 9's verification requirement. Full decrypt-test would need
// the identity, which the backup side never holds.
func verifyAgeHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return fmt.Errorf("encrypted artifact %s is empty", path)
	}
	if sc.Text() != ageHeaderMagic {
		return fmt.Errorf("encrypted artifact %s failed header verification", path)
	}
	return nil
}
