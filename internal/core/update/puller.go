package update

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/LoriKarikari/dockcli/internal/core/registry"
	"github.com/LoriKarikari/dockcli/internal/logging"
	"github.com/LoriKarikari/dockcli/internal/ui"
)

const untagged = ":<none>"

type PullOptions struct {
	Style        ui.Style
	CheckDigests bool
}

type Summary struct {
	Pulled   int
	UpToDate int
	Failed   []string
}

func (s Summary) String() string {
	return fmt.Sprintf("Pulled %d, up to date %d, failed %d", s.Pulled, s.UpToDate, len(s.Failed))
}

// Puller pulls every locally tagged image, one at a time.
type Puller struct {
	docker   Docker
	resolver Resolver
	reporter Reporter
	logger   *slog.Logger
}

// NewPuller returns a Puller. resolver may be nil when digests are never
// checked.
func NewPuller(d Docker, resolver Resolver, reporter Reporter, logger *slog.Logger) *Puller {
	return &Puller{
		docker:   d,
		resolver: resolver,
		reporter: reporter,
		logger:   logging.OrDiscard(logger),
	}
}

// Images returns the local images that can be pulled, sorted and without
// duplicates or untagged entries.
func (p *Puller) Images(ctx context.Context) ([]string, error) {
	images, err := p.docker.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	images = lo.Uniq(lo.Reject(images, func(image string, _ int) bool {
		return image == "" || strings.HasSuffix(image, untagged)
	}))
	slices.Sort(images)
	return images, nil
}

// Pull pulls every image. A failed pull is reported and does not stop the
// loop.
func (p *Puller) Pull(ctx context.Context, opts PullOptions) (Summary, error) {
	var summary Summary

	images, err := p.Images(ctx)
	if err != nil {
		return summary, err
	}
	if len(images) == 0 {
		return summary, ErrNoImages
	}

	quiet := opts.Style.Quiet()
	for i, image := range images {
		prefix := p.reporter.ListPrefix(i+1, len(images))
		result := prefix + " "
		if opts.Style == ui.StyleStatus {
			result = ""
		}

		p.reporter.Progress(prefix+" Pulling %s", image)

		if opts.CheckDigests && p.upToDate(ctx, image) {
			p.reporter.Success(result+"Up to date %s", image)
			summary.UpToDate++
			continue
		}

		res, err := p.docker.PullImage(ctx, image, quiet)
		if err != nil {
			return summary, fmt.Errorf("failed to pull %s: %w", image, err)
		}
		if !res.Success() {
			p.reporter.Error(result+"Failed to pull %s", image)
			for _, line := range res.Stderr {
				p.reporter.Println(p.reporter.Muted(line))
			}
			summary.Failed = append(summary.Failed, image)
			continue
		}

		p.reporter.Success(result+"Pulled %s", image)
		summary.Pulled++
	}

	return summary, nil
}

// upToDate reports whether the remote digest of image matches a local
// repo digest. Any lookup error means the image is pulled.
func (p *Puller) upToDate(ctx context.Context, image string) bool {
	if p.resolver == nil {
		return false
	}

	local, err := p.docker.ImageDigests(ctx, image)
	if err != nil {
		p.logger.Debug("failed to inspect image", "image", image, "error", err)
		return false
	}
	if len(local) == 0 {
		p.logger.Debug("image has no repo digests", "image", image)
		return false
	}

	remote, err := p.resolver.Resolve(ctx, image)
	if err != nil {
		p.logger.Debug("failed to resolve remote digest", "image", image, "error", err)
		return false
	}

	return registry.MatchesLocal(remote, local)
}
