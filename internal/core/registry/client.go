package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/samber/lo"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const (
	httpsPrefix     = "https://"
	dockerHub       = "docker.io"
	dockerHubAPI    = "registry-1.docker.io"
	dockerHubLegacy = "https://index.docker.io/v1/"
	githubRegistry  = "ghcr.io"
)

// Client resolves image tags against their remote registry.
type Client struct {
	credential auth.CredentialFunc
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		credential: credentialFunc(logger),
		logger:     logger,
	}
}

// Resolve returns the descriptor the remote registry currently serves for image.
func (c *Client) Resolve(ctx context.Context, image string) (ocispec.Descriptor, error) {
	host, repository, tag, err := ParseReference(image)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	repo, err := c.createRepository(host + "/" + repository)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	desc, err := repo.Resolve(ctx, tag)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("failed to resolve %s: %w", image, err)
	}

	c.logger.Debug("resolved remote digest", "image", image, "digest", desc.Digest.String())
	return desc, nil
}

func (c *Client) createRepository(ref string) (*remote.Repository, error) {
	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	repo.Client = &auth.Client{
		Client:     retry.DefaultClient,
		Cache:      auth.NewCache(),
		Credential: c.credential,
	}
	return repo, nil
}

// ParseReference normalises a docker image reference into the registry host
// to contact, the repository path and the tag.
func ParseReference(image string) (host, repository, tag string, err error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid image reference %q: %w", image, err)
	}

	tagged, ok := reference.TagNameOnly(named).(reference.Tagged)
	if !ok {
		return "", "", "", fmt.Errorf("image reference %q has no tag", image)
	}

	host = reference.Domain(named)
	if host == dockerHub {
		host = dockerHubAPI
	}
	return host, reference.Path(named), tagged.Tag(), nil
}

// MatchesLocal reports whether any of the local repo digests (name@digest)
// points at the remote descriptor.
func MatchesLocal(remote ocispec.Descriptor, repoDigests []string) bool {
	return lo.SomeBy(repoDigests, func(repoDigest string) bool {
		_, raw, found := strings.Cut(repoDigest, "@")
		if !found {
			return false
		}
		d, err := digest.Parse(raw)
		return err == nil && d == remote.Digest
	})
}

// credentialFunc supplies registry credentials: GITHUB_USER/GITHUB_TOKEN for
// ghcr.io, otherwise the inline auths of the docker CLI config.
func credentialFunc(logger *slog.Logger) auth.CredentialFunc {
	return func(ctx context.Context, hostport string) (auth.Credential, error) {
		if cred, ok := githubCredential(hostport); ok {
			logger.Debug("using GITHUB_TOKEN for authentication", "registry", hostport)
			return cred, nil
		}

		path := dockerConfigPath()
		if path == "" {
			return auth.EmptyCredential, nil
		}
		config, err := loadDockerConfig(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Debug("ignoring unreadable docker config", "path", path, "error", err)
			}
			return auth.EmptyCredential, nil
		}
		return config.lookup(hostport), nil
	}
}

func githubCredential(hostport string) (auth.Credential, bool) {
	if hostport != githubRegistry {
		return auth.EmptyCredential, false
	}
	username, token := os.Getenv("GITHUB_USER"), os.Getenv("GITHUB_TOKEN")
	if username == "" || token == "" {
		return auth.EmptyCredential, false
	}
	return auth.Credential{Username: username, Password: token}, true
}

func dockerConfigPath() string {
	if dir := os.Getenv("DOCKER_CONFIG"); dir != "" {
		return filepath.Join(dir, "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".docker", "config.json")
}

// dockerConfig is the part of the docker CLI config holding inline
// credentials. Credential helpers (credsStore, credHelpers) are not consulted.
type dockerConfig struct {
	Auths map[string]dockerAuth `json:"auths"`
}

type dockerAuth struct {
	Auth          string `json:"auth"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	IdentityToken string `json:"identitytoken"`
}

func loadDockerConfig(path string) (dockerConfig, error) {
	var config dockerConfig

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return config, nil
}

// lookup tries every key docker may have stored the registry under.
func (c dockerConfig) lookup(hostport string) auth.Credential {
	for _, key := range registryKeys(hostport) {
		entry, ok := c.Auths[key]
		if !ok {
			continue
		}
		if cred := entry.credential(); cred != auth.EmptyCredential {
			return cred
		}
	}
	return auth.EmptyCredential
}

func registryKeys(hostport string) []string {
	keys := lo.FlatMap([]string{hostport, httpsPrefix + hostport}, func(base string, _ int) []string {
		return []string{base, base + "/v1/", base + "/v2/"}
	})
	if hostport == dockerHubAPI || hostport == dockerHub {
		keys = append(keys, dockerHubLegacy)
	}
	return keys
}

func (a dockerAuth) credential() auth.Credential {
	switch {
	case a.IdentityToken != "":
		return auth.Credential{RefreshToken: a.IdentityToken}
	case a.Username != "" && a.Password != "":
		return auth.Credential{Username: a.Username, Password: a.Password}
	}
	return decodeAuth(a.Auth)
}

// decodeAuth decodes docker's base64 "user:password" auth field.
func decodeAuth(encoded string) auth.Credential {
	if encoded == "" {
		return auth.EmptyCredential
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return auth.EmptyCredential
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return auth.EmptyCredential
	}
	return auth.Credential{Username: username, Password: password}
}
