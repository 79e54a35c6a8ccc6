package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	openvpnv1 "github.com/honeybbq/netjson/gen/go/netjson/openvpn/v1"
	openwrtv1 "github.com/honeybbq/netjson/gen/go/netjson/openwrt/v1"
	vxlanv1 "github.com/honeybbq/netjson/gen/go/netjson/vxlan/v1"
	wireguardv1 "github.com/honeybbq/netjson/gen/go/netjson/wireguard/v1"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	openvpnbackend "github.com/honeybbq/rosreconcile/backend/openvpn"
	openwrtbackend "github.com/honeybbq/rosreconcile/backend/openwrt"
	vxlanbackend "github.com/honeybbq/rosreconcile/backend/vxlan"
	wireguardbackend "github.com/honeybbq/rosreconcile/backend/wireguard"
	"github.com/honeybbq/rosreconcile/domain/routeros"
	"github.com/honeybbq/rosreconcile/internal/config"
	"github.com/honeybbq/rosreconcile/internal/logging"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/reconcile"
	"github.com/honeybbq/rosreconcile/pkg/renderer/script"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
	"github.com/honeybbq/rosreconcile/pkg/sync"
)

type backendEntry struct {
	backend    rosconfig.Backend
	newMessage func() proto.Message
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var targets, assumed stringList
	var (
		configPath    = flag.String("config", "", "configuration file (.yaml or .toml)")
		current       = flag.String("current", "", "exported script of the device (default: empty device)")
		previous      = flag.String("previous", "", "target the device was last reconciled to, for rename detection")
		format        = flag.String("format", "", "target format: native | netjson-openwrt | netjson-wireguard | netjson-vxlan | netjson-openvpn")
		orphans       = flag.String("orphans", "", "orphan policy: ignore | remove")
		outputPath    = flag.String("output", "", "script output path (default: stdout)")
		filesOutDir   = flag.String("files-dir", "", "directory for additional files")
		graph         = flag.String("graph", "", "also write the dependency graph: dot | mermaid")
		graphOutput   = flag.String("graph-output", "", "graph output path (default: stderr)")
		deviceVersion = flag.String("device-version", "", "RouterOS version of the device, e.g. 7.15")
		strict        = flag.Bool("strict", false, "fail when any record fails")
		listPaths     = flag.Bool("list-paths", false, "list managed menu paths")
	)
	flag.Var(&targets, "target", "target file, repeatable; later files override earlier ones")
	flag.Var(&assumed, "assume", "reference present on the device but absent from the export, kind:value (repeatable)")
	flag.Parse()

	registry := routeros.Registry()
	if *listPaths {
		for _, p := range registry.Paths() {
			fmt.Println(p)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		exitWithError(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "target":
			cfg.Targets = targets
		case "current":
			cfg.Current = *current
		case "previous":
			cfg.PreviousTarget = *previous
		case "format":
			cfg.Format = *format
		case "orphans":
			cfg.Orphans = *orphans
		case "output":
			cfg.Output = *outputPath
		case "graph":
			cfg.Graph = *graph
		case "device-version":
			cfg.DeviceVersion = *deviceVersion
		case "strict":
			cfg.Strict = *strict
		}
	})
	if err := cfg.Validate(); err != nil {
		exitWithError(err)
	}
	logger := logging.New(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	target, err := loadTarget(ctx, cfg.Format, cfg.Targets, cfg.DeviceVersion)
	if err != nil {
		exitWithError(fmt.Errorf("load target: %w", err))
	}
	currentDoc, err := loadCurrent(ctx, cfg.Current)
	if err != nil {
		exitWithError(fmt.Errorf("load current: %w", err))
	}
	refs, err := parseAssumed(assumed)
	if err != nil {
		exitWithError(err)
	}

	opts := []sync.Option{
		sync.WithLogger(logger),
		sync.WithOrphanPolicy(cfg.OrphanPolicy()),
		sync.WithRenames(renames(cfg.Renames)...),
		sync.WithStrict(cfg.Strict),
		sync.WithGenerationTag(cfg.GenerationTag),
		sync.WithAssumed(refs...),
	}
	if v := cfg.Version(); v != nil {
		opts = append(opts, sync.WithDeviceVersion(v))
	}
	if cfg.PreviousTarget != "" {
		prev, err := loadTarget(ctx, cfg.Format, []string{cfg.PreviousTarget}, cfg.DeviceVersion)
		if err != nil {
			exitWithError(fmt.Errorf("load previous target: %w", err))
		}
		opts = append(opts, sync.WithPreviousTarget(prev))
	}

	cs, err := sync.NewPlanner(registry, opts...).Plan(ctx, currentDoc, target)
	if err != nil {
		exitWithError(fmt.Errorf("plan: %w", err))
	}

	if err := writeOutput(cfg.Output, cs.Script); err != nil {
		exitWithError(fmt.Errorf("write output: %w", err))
	}
	if len(cs.Bundle.Files) > 0 {
		if err := writeBundleFiles(*filesOutDir, cs.Bundle.Files); err != nil {
			exitWithError(err)
		}
	}
	if cfg.Graph != "" {
		if err := writeGraph(cs, cfg.Graph, *graphOutput); err != nil {
			exitWithError(fmt.Errorf("write graph: %w", err))
		}
	}
	if len(cs.Errors) > 0 {
		logSummary(logger, cs)
		os.Exit(2)
	}
}

func buildBackends() map[string]backendEntry {
	return map[string]backendEntry{
		config.FormatNetJSONOpenWrt: {
			backend:    openwrtbackend.New(),
			newMessage: func() proto.Message { return &openwrtv1.OpenWrtConfig{} },
		},
		config.FormatNetJSONWireguard: {
			backend:    wireguardbackend.New(),
			newMessage: func() proto.Message { return &wireguardv1.WireguardConfig{} },
		},
		config.FormatNetJSONVxlan: {
			backend:    vxlanbackend.New(),
			newMessage: func() proto.Message { return &vxlanv1.VxlanConfig{} },
		},
		config.FormatNetJSONOpenVPN: {
			backend:    openvpnbackend.New(),
			newMessage: func() proto.Message { return &openvpnv1.OpenVpnConfig{} },
		},
	}
}

// loadConfig reads the configuration file, or starts from defaults plus
// environment overrides when there is none. Validation happens after flags
// are applied.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		config.ApplyEnv(cfg)
		return cfg, nil
	}
	return config.Load(path)
}

// loadTarget reads and merges the target layers and converts them to a
// RouterOS document.
func loadTarget(ctx context.Context, format string, paths []string, deviceVersion string) (*ast.Document, error) {
	if len(paths) == 0 {
		return nil, errors.New("no target given (use -target)")
	}
	layers := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := readInput(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		layers = append(layers, data)
	}

	if format == config.FormatNative {
		data := layers[0]
		if len(layers) > 1 {
			merged, err := rosconfig.MergeYAML(layers, rosconfig.DefaultIdentifiers)
			if err != nil {
				return nil, err
			}
			data = merged
		}
		return routeros.LoadNative(data)
	}

	entry, ok := buildBackends()[format]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", format)
	}
	data := layers[0]
	if len(layers) > 1 {
		merged, err := rosconfig.MergeJSON(layers, rosconfig.DefaultIdentifiers)
		if err != nil {
			return nil, err
		}
		data = merged
	}
	message := entry.newMessage()
	if err := protojson.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("decode netjson: %w", err)
	}
	return entry.backend.ToTarget(ctx, message, rosconfig.RenderOptions{
		IncludeAuxiliary: true,
		DeviceVersion:    deviceVersion,
	})
}

// loadCurrent parses an exported script. No path means an empty device.
func loadCurrent(ctx context.Context, path string) (*ast.Document, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return script.NewExportParser().ParseScript(ctx, bytes.NewReader(data), rosconfig.ParseOptions{
		AllowUnknown:   true,
		SourceMetadata: map[string]string{"origin": path},
	})
}

func parseAssumed(values []string) ([]resource.Reference, error) {
	refs := make([]resource.Reference, 0, len(values))
	for _, v := range values {
		kind, val, ok := strings.Cut(v, ":")
		if !ok || kind == "" || val == "" {
			return nil, fmt.Errorf("assume %q: want kind:value", v)
		}
		refs = append(refs, resource.Reference{Kind: resource.ReferenceKind(kind), Value: val})
	}
	return refs, nil
}

func renames(in []config.Rename) []reconcile.Rename {
	out := make([]reconcile.Rename, 0, len(in))
	for _, r := range in {
		out = append(out, reconcile.Rename{Kind: resource.ReferenceKind(r.Kind), Old: r.Old, New: r.New})
	}
	return out
}

func logSummary(logger zerolog.Logger, cs *sync.ChangeSet) {
	for _, c := range cs.Collections {
		logger.Info().
			Str("path", c.Path).
			Int("added", c.Added).
			Int("updated", c.Updated).
			Int("removed", c.Removed).
			Msg("collection")
	}
	logger.Error().Int("failed", len(cs.Errors)).Msg("some records were skipped")
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeGraph(cs *sync.ChangeSet, kind, path string) error {
	g, err := cs.Graph()
	if err != nil {
		return err
	}
	text := g.DOT()
	if kind == "mermaid" {
		text = g.Mermaid()
	}
	if path == "" {
		_, err := io.WriteString(os.Stderr, text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// writeBundleFiles 写入附加文件
func writeBundleFiles(dir string, files []rosconfig.File) error {
	if dir == "" {
		return fmt.Errorf("additional files produced; specify -files-dir to write them")
	}
	for _, file := range files {
		if file.Path == "" {
			continue
		}
		rel := strings.TrimPrefix(file.Path, "/")
		rel = strings.TrimPrefix(rel, string(filepath.Separator))
		if rel == "" {
			return fmt.Errorf("invalid additional file path %q", file.Path)
		}
		target := filepath.Join(dir, filepath.Clean(rel))
		if !strings.HasPrefix(target, filepath.Clean(dir)) {
			return fmt.Errorf("additional file escapes files-dir: %q", file.Path)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directories for %q: %w", target, err)
		}
		mode := file.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, file.Content, mode); err != nil {
			return fmt.Errorf("write additional file %q: %w", target, err)
		}
	}
	return nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
