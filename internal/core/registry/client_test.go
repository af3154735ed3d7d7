package registry

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/registry/remote/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		name       string
		image      string
		host       string
		repository string
		tag        string
		wantErr    bool
	}{
		{name: "official image", image: "nginx", host: "registry-1.docker.io", repository: "library/nginx", tag: "latest"},
		{name: "official image with tag", image: "redis:7", host: "registry-1.docker.io", repository: "library/redis", tag: "7"},
		{name: "user image", image: "grafana/grafana:11.0.0", host: "registry-1.docker.io", repository: "grafana/grafana", tag: "11.0.0"},
		{name: "ghcr", image: "ghcr.io/user/app:v1", host: "ghcr.io", repository: "user/app", tag: "v1"},
		{name: "registry with port", image: "localhost:5000/app:dev", host: "localhost:5000", repository: "app", tag: "dev"},
		{name: "uppercase invalid", image: "Nginx:latest", wantErr: true},
		{name: "digest only", image: "nginx@sha256:" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, repository, tag, err := ParseReference(tt.image)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReference(%q) error = %v, wantErr %v", tt.image, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if host != tt.host || repository != tt.repository || tag != tt.tag {
				t.Errorf("ParseReference(%q) = %s, %s, %s; want %s, %s, %s",
					tt.image, host, repository, tag, tt.host, tt.repository, tt.tag)
			}
		})
	}
}

func TestMatchesLocal(t *testing.T) {
	remote := ocispec.Descriptor{
		Digest: digest.Digest("sha256:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
	}

	tests := []struct {
		name     string
		digests  []string
		expected bool
	}{
		{name: "match", digests: []string{"nginx@" + remote.Digest.String()}, expected: true},
		{name: "other digest", digests: []string{"nginx@sha256:ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"}, expected: false},
		{name: "malformed", digests: []string{"nginx", "nginx@notadigest"}, expected: false},
		{name: "empty", digests: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesLocal(remote, tt.digests); got != tt.expected {
				t.Errorf("MatchesLocal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDockerConfigLookup(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("alice:secret"))

	tests := []struct {
		name     string
		key      string
		entry    dockerAuth
		registry string
		want     auth.Credential
	}{
		{
			name:     "bare host",
			key:      "ghcr.io",
			entry:    dockerAuth{Auth: encoded},
			registry: "ghcr.io",
			want:     auth.Credential{Username: "alice", Password: "secret"},
		},
		{
			name:     "https host",
			key:      "https://quay.io",
			entry:    dockerAuth{Auth: encoded},
			registry: "quay.io",
			want:     auth.Credential{Username: "alice", Password: "secret"},
		},
		{
			name:     "v2 suffix",
			key:      "registry.example.com/v2/",
			entry:    dockerAuth{Auth: encoded},
			registry: "registry.example.com",
			want:     auth.Credential{Username: "alice", Password: "secret"},
		},
		{
			name:     "docker hub legacy key",
			key:      "https://index.docker.io/v1/",
			entry:    dockerAuth{Auth: encoded},
			registry: "registry-1.docker.io",
			want:     auth.Credential{Username: "alice", Password: "secret"},
		},
		{
			name:     "plain username and password",
			key:      "quay.io",
			entry:    dockerAuth{Username: "dave", Password: "pw"},
			registry: "quay.io",
			want:     auth.Credential{Username: "dave", Password: "pw"},
		},
		{
			name:     "identity token",
			key:      "myregistry.azurecr.io",
			entry:    dockerAuth{IdentityToken: "refresh"},
			registry: "myregistry.azurecr.io",
			want:     auth.Credential{RefreshToken: "refresh"},
		},
		{
			name:     "no entry",
			key:      "other.io",
			entry:    dockerAuth{Auth: encoded},
			registry: "quay.io",
			want:     auth.EmptyCredential,
		},
		{
			name:     "empty entry",
			key:      "quay.io",
			entry:    dockerAuth{},
			registry: "quay.io",
			want:     auth.EmptyCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := dockerConfig{Auths: map[string]dockerAuth{tt.key: tt.entry}}
			if got := config.lookup(tt.registry); got != tt.want {
				t.Errorf("lookup(%q) = %+v, want %+v", tt.registry, got, tt.want)
			}
		})
	}
}

func TestDecodeAuth(t *testing.T) {
	tests := []struct {
		value string
		want  auth.Credential
	}{
		{"", auth.EmptyCredential},
		{"!!notbase64", auth.EmptyCredential},
		{base64.StdEncoding.EncodeToString([]byte("nocolon")), auth.EmptyCredential},
		{base64.StdEncoding.EncodeToString([]byte("user:pa:ss")), auth.Credential{Username: "user", Password: "pa:ss"}},
	}

	for _, tt := range tests {
		if got := decodeAuth(tt.value); got != tt.want {
			t.Errorf("decodeAuth(%q) = %+v, want %+v", tt.value, got, tt.want)
		}
	}
}

func TestCredentialFuncDockerConfig(t *testing.T) {
	dir := t.TempDir()
	encoded := base64.StdEncoding.EncodeToString([]byte("bob:hunter2"))
	config := `{"auths":{"registry.example.com":{"auth":"` + encoded + `"}},"credsStore":"desktop"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(config), 0o600); err != nil {
		t.Fatalf("failed to write docker config: %v", err)
	}
	t.Setenv("DOCKER_CONFIG", dir)
	t.Setenv("GITHUB_TOKEN", "")

	credential := credentialFunc(discardLogger())
	cred, err := credential(context.Background(), "registry.example.com")
	if err != nil {
		t.Fatalf("credential lookup failed: %v", err)
	}
	if cred.Username != "bob" || cred.Password != "hunter2" {
		t.Errorf("unexpected credential %v", cred)
	}
}

func TestCredentialFuncBrokenConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing", content: ""},
		{name: "invalid json", content: "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(tt.content), 0o600); err != nil {
					t.Fatalf("failed to write docker config: %v", err)
				}
			}
			t.Setenv("DOCKER_CONFIG", dir)

			cred, err := credentialFunc(discardLogger())(context.Background(), "quay.io")
			if err != nil {
				t.Fatalf("credential lookup failed: %v", err)
			}
			if cred != auth.EmptyCredential {
				t.Errorf("expected anonymous access, got %v", cred)
			}
		})
	}
}

func TestGitHubCredential(t *testing.T) {
	t.Setenv("GITHUB_USER", "carol")
	t.Setenv("GITHUB_TOKEN", "ghp_token")

	cred, ok := githubCredential("ghcr.io")
	if !ok || cred.Username != "carol" || cred.Password != "ghp_token" {
		t.Errorf("unexpected credential %v", cred)
	}

	if _, ok := githubCredential("quay.io"); ok {
		t.Error("expected no GitHub credential for quay.io")
	}

	t.Setenv("GITHUB_TOKEN", "")
	if _, ok := githubCredential("ghcr.io"); ok {
		t.Error("expected no GitHub credential without a token")
	}
}

func TestResolve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := NewClient(nil)
	desc, err := client.Resolve(context.Background(), "alpine:latest")
	if err != nil {
		t.Skipf("registry not reachable: %v", err)
	}

	if desc.Digest == "" {
		t.Error("Expected a digest, got empty")
	}
}
