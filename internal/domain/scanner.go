package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// Scanner runs the analysis pipeline: graph, metadata, weight, classification.
type Scanner interface {
	Scan(ctx context.Context) (*m.ScanResult, error)
}

type scanner struct {
	provider   adapter.ContentProvider
	filter     *PathFilter
	formats    FormatPolicy
	classifier *Classifier
	now        func() time.Time
}

// NewScanner creates a Scanner over provider.
func NewScanner(provider adapter.ContentProvider, filter *PathFilter, formats FormatPolicy, shaders ShaderPolicy) Scanner {
	return &scanner{
		provider:   provider,
		filter:     filter,
		formats:    formats,
		classifier: NewClassifier(formats, shaders),
		now:        time.Now,
	}
}

// Scan rebuilds every derived structure from the current provider state. It performs no
// writes, so repeated scans of an unchanged project yield identical results.
func (s *scanner) Scan(ctx context.Context) (*m.ScanResult, error) {
	started := s.now()

	if refresher, ok := s.provider.(adapter.Refresher); ok {
		if err := refresher.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("refresh provider: %w", err)
		}
	}

	roots, err := s.provider.ListRootDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list root documents: %w", err)
	}

	if len(roots) == 0 {
		return nil, ErrUnresolvableRoot
	}

	inventory, err := s.provider.ListAllProjectResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project resources: %w", err)
	}

	graph, err := BuildGraph(ctx, s.provider, roots, inventory, s.filter)
	if err != nil {
		return nil, err
	}

	result := &m.ScanResult{
		ID:          uuid.NewString(),
		ProjectName: s.provider.ProjectName(),
		ProjectRoot: s.provider.ProjectRoot(),
		StartedAt:   started,
		Roots:       graph.Roots,
		Entries:     make([]m.WeightedEntry, 0, graph.Len()),
	}

	for order, path := range graph.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node, warning, err := s.node(ctx, path, order)
		if err != nil {
			return nil, err
		}

		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
		}

		result.Entries = append(result.Entries, m.WeightedEntry{
			Node:      node,
			CostBytes: s.formats.EstimateCost(node),
			Flags:     s.classifier.Classify(node),
			Reachable: graph.IsReachable(path),
		})
	}

	result.Summary = Summarize(result.Entries)

	slog.Info("scan completed",
		"project", result.ProjectName,
		"scan", result.ID,
		"nodes", result.Summary.Count,
		"reachable", result.Summary.ReachableCount,
		"unreachable", result.Summary.UnreachableCount,
		"warnings", len(result.Warnings),
		"duration", s.now().Sub(started),
	)

	return result, nil
}

func (s *scanner) node(ctx context.Context, path m.Path, order int) (m.ResourceNode, *m.Warning, error) {
	node := m.ResourceNode{
		Path:    path,
		Order:   order,
		Creator: SuggestCreator(path),
	}

	metadata, err := s.provider.GetMetadata(ctx, path)
	if err != nil {
		if !errors.Is(err, adapter.ErrResourceMissing) {
			return node, nil, fmt.Errorf("metadata for %s: %w", path, err)
		}

		node.Missing = true
		node.Kind = m.KindOther

		slog.Warn("resource missing", "path", path)

		return node, &m.Warning{Kind: m.WarningMissingResource, Path: path, Reason: "no backing file"}, nil
	}

	node.RawSizeBytes = metadata.RawSizeBytes
	node.Kind = metadata.Kind
	node.PixelFormat = metadata.PixelFormat
	node.Dimensions = metadata.Dimensions
	node.MaxSizeSetting = metadata.MaxSizeSetting
	node.ShaderID = metadata.ShaderID

	if node.Kind == "" {
		node.Kind = m.KindOther
	}

	if node.IsTexture() && !HasTextureMetadata(node) {
		node.MetadataUnavailable = true

		slog.Warn("texture metadata unavailable", "path", path)

		return node, &m.Warning{
			Kind:   m.WarningMetadataUnavailable,
			Path:   path,
			Reason: "pixel format or dimensions unknown",
		}, nil
	}

	return node, nil, nil
}
