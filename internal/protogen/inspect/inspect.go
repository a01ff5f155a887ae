// Package inspect compiles a category's proto files to a descriptor set
// through the descriptor compiler and summarizes what they declare. It is
// a read-only diagnostic; nothing it does touches the destination tree.
package inspect

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"protogen/internal/protogen/driver"
	"protogen/pkg/errors"
	"protogen/pkg/platform"
)

// FileReport summarizes one compiled proto file.
type FileReport struct {
	Name     string
	Package  string
	Messages int
	Enums    int
}

// Report is the result of inspecting one category.
type Report struct {
	Category string
	Files    []FileReport
	// basenames claimed by more than one proto file; these would collide
	// after extension substitution
	Collisions []string
}

// Inspector drives the descriptor compiler.
type Inspector struct {
	tool     string
	timeout  time.Duration
	commands platform.CommandFactory
}

func New(tool string, timeout time.Duration, commands platform.CommandFactory) *Inspector {
	return &Inspector{tool: tool, timeout: timeout, commands: commands}
}

// Run compiles the category's sources into a FileDescriptorSet and
// decodes it. The descriptor file lives in a throwaway temp directory,
// removed on every exit path.
func (i *Inspector) Run(ctx context.Context, cat driver.Category, sources []driver.SourceFile) (*Report, error) {
	if len(sources) == 0 {
		return &Report{Category: cat.Name}, nil
	}

	tmp, err := os.MkdirTemp("", "protogen-inspect-*")
	if err != nil {
		return nil, errors.WrapFilesystemError("", "mkdtemp", err)
	}
	defer os.RemoveAll(tmp)

	descFile := filepath.Join(tmp, "descriptors.bin")

	args := []string{
		"-I", cat.SourceDir,
		"--include_imports",
		"--descriptor_set_out=" + descFile,
	}
	for _, src := range sources {
		args = append(args, src.Path)
	}

	toolCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	var output bytes.Buffer
	cmd := i.commands.CommandContext(toolCtx, i.tool, args...)
	cmd.SetStdout(&output)
	cmd.SetStderr(&output)
	if err := cmd.Run(); err != nil {
		cause := fmt.Errorf("%w: %v", errors.ErrToolFailed, err)
		return nil, errors.WrapGenerationError(cat.Name, cat.SourceDir, output.String(), cause)
	}

	data, err := os.ReadFile(descFile)
	if err != nil {
		return nil, errors.WrapFilesystemError(descFile, "read", err)
	}

	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decoding descriptor set for category %s: %w", cat.Name, err)
	}

	return buildReport(cat.Name, &set), nil
}

func buildReport(category string, set *descriptorpb.FileDescriptorSet) *Report {
	report := &Report{Category: category}

	byBase := make(map[string][]string)
	for _, file := range set.GetFile() {
		report.Files = append(report.Files, FileReport{
			Name:     file.GetName(),
			Package:  file.GetPackage(),
			Messages: len(file.GetMessageType()),
			Enums:    len(file.GetEnumType()),
		})

		base := trimExt(filepath.Base(file.GetName()))
		byBase[base] = append(byBase[base], file.GetName())
	}

	for base, names := range byBase {
		if len(names) > 1 {
			report.Collisions = append(report.Collisions, base)
		}
	}

	return report
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
