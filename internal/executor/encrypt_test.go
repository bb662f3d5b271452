package executor

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/require"
)

func TestEncryptArtifactRoundTrips(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "recipients.txt")
	require.NoError(t, os.WriteFile(keyPath, []byte(identity.Recipient().String()+"\n"), 0o640))

	artifact := filepath.Join(dir, "snapshot.tar.gz")
	require.NoError(t, os.WriteFile(artifact, []byte("plaintext payload"), 0o640))

	encPath, err := EncryptArtifact(artifact, keyPath)
	require.NoError(t, err)
	require.Equal(t, artifact+".age", encPath)
	require.NoFileExists(t, artifact)

	f, err := os.Open(encPath)
	require.NoError(t, err)
	defer f.Close()

	r, err := age.Decrypt(f, identity)
	require.NoError(t, err)
	plaintext, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "plaintext payload", string(plaintext))
}

func TestLoadRecipientsRejectsEmptyFile(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "recipients.txt")
	require.NoError(t, os.WriteFile(keyPath, []byte("# just a comment\n"), 0o640))

	_, err := loadRecipients(keyPath)
	require.Error(t, err)
}
