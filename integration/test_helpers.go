package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/honeybbq/rosreconcile/domain/routeros"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/renderer/script"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
	"github.com/honeybbq/rosreconcile/pkg/sync"
)

// readTestdata 读取 testdata 下的文件
func readTestdata(t *testing.T, parts ...string) []byte {
	t.Helper()
	path := filepath.Join(append([]string{"..", "testdata"}, parts...)...)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// loadMessage 把 NetJSON 解析进 msg
func loadMessage(t *testing.T, msg proto.Message, parts ...string) {
	t.Helper()
	if err := protojson.Unmarshal(readTestdata(t, parts...), msg); err != nil {
		t.Fatalf("unmarshal netjson: %v", err)
	}
}

// toTarget 通过后端生成目标文档（包含附加文件）
func toTarget(t *testing.T, backend rosconfig.Backend, msg proto.Message) *ast.Document {
	t.Helper()
	doc, err := backend.ToTarget(context.Background(), msg, rosconfig.RenderOptions{IncludeAuxiliary: true})
	if err != nil {
		t.Fatalf("ToTarget failed: %v", err)
	}
	return doc
}

// parseExport 解析导出脚本作为设备当前状态
func parseExport(t *testing.T, data []byte) *ast.Document {
	t.Helper()
	doc, err := script.NewExportParser().ParseScript(context.Background(), bytes.NewReader(data), rosconfig.ParseOptions{AllowUnknown: true})
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	return doc
}

// plan 以 RouterOS 描述符注册表执行一次对账
func plan(t *testing.T, current, target *ast.Document, opts ...sync.Option) *sync.ChangeSet {
	t.Helper()
	cs, err := sync.NewPlanner(routeros.Registry(), opts...).Plan(context.Background(), current, target)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(cs.Errors) > 0 {
		t.Fatalf("unexpected per-record errors: %v", cs.Errors)
	}
	return cs
}

// bundleToText 返回 Bundle 中的脚本包内容
func bundleToText(bundle *rosconfig.Bundle) string {
	if pkg, ok := bundle.Package(script.PackageName); ok {
		return string(pkg.Content)
	}
	return ""
}

// normalizeConfig 标准化配置文本用于比较
// 1. 去除首尾空白
// 2. 统一换行符
func normalizeConfig(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// compareConfigs 智能比较配置内容，忽略不重要的空白差异
func compareConfigs(got, want string) bool {
	return normalizeConfig(got) == normalizeConfig(want)
}

// formatConfigDiff 格式化配置差异信息
func formatConfigDiff(got, want string) string {
	gotNorm := normalizeConfig(got)
	wantNorm := normalizeConfig(want)

	if gotNorm == wantNorm {
		return "scripts match (after normalization)"
	}

	gotLines := strings.Split(gotNorm, "\n")
	wantLines := strings.Split(wantNorm, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "script mismatch (got %d lines, want %d lines)\n", len(gotLines), len(wantLines))
	fmt.Fprintf(&b, "--- got (normalized) ---\n%s\n", gotNorm)
	fmt.Fprintf(&b, "--- want (normalized) ---\n%s\n", wantNorm)

	fmt.Fprintf(&b, "--- line-by-line diff ---\n")
	for i := range max(len(gotLines), len(wantLines)) {
		var gotLine, wantLine string
		if i < len(gotLines) {
			gotLine = gotLines[i]
		}
		if i < len(wantLines) {
			wantLine = wantLines[i]
		}
		if gotLine != wantLine {
			fmt.Fprintf(&b, "Line %d differs:\n", i+1)
			fmt.Fprintf(&b, "  got:  %q\n", gotLine)
			fmt.Fprintf(&b, "  want: %q\n", wantLine)
		}
	}
	return b.String()
}

// assertScript 对比生成脚本与 golden 文件
func assertScript(t *testing.T, cs *sync.ChangeSet, golden ...string) {
	t.Helper()
	got := bundleToText(cs.Bundle)
	want := string(readTestdata(t, golden...))
	if !compareConfigs(got, want) {
		t.Fatalf("%s", formatConfigDiff(got, want))
	}
}
