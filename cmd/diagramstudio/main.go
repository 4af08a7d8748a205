/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"diagramstudio/internal/assist"
	"diagramstudio/internal/backend"
	"diagramstudio/internal/config"
	"diagramstudio/internal/crash"
	"diagramstudio/internal/export"
	applog "diagramstudio/internal/log"
	"diagramstudio/internal/mermaid"
	"diagramstudio/internal/storage"
	"diagramstudio/internal/telemetry"
	"diagramstudio/internal/toolset"
	"diagramstudio/internal/version"
)

func usage() {
	fmt.Println("Diagram Studio")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  diagramstudio version|-v|--version          Show version")
	fmt.Println("  diagramstudio init <dir> <name>             Create a new diagram project at <dir>")
	fmt.Println("  diagramstudio open <dir>                    Open the project and print a summary")
	fmt.Println("  diagramstudio save <dir>                    Re-save the project (creates a backup)")
	fmt.Println("  diagramstudio export <dir> pdf|svg|mermaid [out]")
	fmt.Println("                                              Render the diagram to a file")
	fmt.Println("  diagramstudio import <dir> <file.mmd>       Import a Mermaid flowchart into the project")
	fmt.Println("  diagramstudio generate <dir> <description>  Ask the assist endpoint for a diagram")
	fmt.Println("  diagramstudio snapshots <dir> [n]           List recent document snapshots")
	fmt.Println("  diagramstudio tools list <dir>              Show the tool palettes available to a project")
	fmt.Println("  diagramstudio tools pack <dir> <out.zip>    Bundle a project's palettes into a tool pack")
	fmt.Println("  diagramstudio tools install <dir> <pack>    Install a tool pack into a project")
	fmt.Println("  diagramstudio sync list|push|pull ...       Talk to the sync server")
	fmt.Println("  diagramstudio serve                         Run the sync server")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var dh *storage.DiagramHandle
	defer func() { crash.Recover(dh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Diagram Studio")
		fmt.Println(version.String())
	case "init":
		if len(args) < 4 {
			fmt.Println("init requires <dir> and <name>")
			usage()
			os.Exit(2)
		}
		dh = cmdInit(l, args[2], args[3])
	case "open":
		dh = cmdOpen(l, requireDir(args, "open"))
	case "save":
		dh = cmdSave(l, requireDir(args, "save"))
	case "export":
		if len(args) < 4 {
			fmt.Println("export requires <dir> and a format (pdf, svg or mermaid)")
			usage()
			os.Exit(2)
		}
		out := ""
		if len(args) > 4 {
			out = args[4]
		}
		dh = cmdExport(l, args[2], args[3], out)
	case "import":
		if len(args) < 4 {
			fmt.Println("import requires <dir> and <file.mmd>")
			usage()
			os.Exit(2)
		}
		dh = cmdImport(l, args[2], args[3])
	case "generate":
		if len(args) < 4 {
			fmt.Println("generate requires <dir> and a description")
			usage()
			os.Exit(2)
		}
		dh = cmdGenerate(l, args[2], strings.Join(args[3:], " "))
	case "snapshots":
		n := 0
		if len(args) > 3 {
			n, _ = strconv.Atoi(args[3])
		}
		cmdSnapshots(l, requireDir(args, "snapshots"), n)
	case "tools":
		if len(args) < 4 {
			fmt.Println("tools requires a subcommand: list <dir>, pack <dir> <out.zip>, install <dir> <pack>")
			os.Exit(2)
		}
		cmdTools(l, args[2], args[3:])
	case "sync":
		if len(args) < 3 {
			fmt.Println("sync requires a subcommand: list, push <dir>, pull <dir> <id>")
			os.Exit(2)
		}
		dh = cmdSync(l, args[2], args[3:])
	case "serve":
		l.Info("starting sync server")
		if err := backend.Start(); err != nil {
			l.Error("server failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
	}
}

func requireDir(args []string, cmd string) string {
	if len(args) < 3 {
		fmt.Printf("%s requires <dir>\n", cmd)
		usage()
		os.Exit(2)
	}
	return args[2]
}

func fail(l *slog.Logger, what string, err error) {
	l.Error(what, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func cmdInit(l *slog.Logger, dir, name string) *storage.DiagramHandle {
	abs, _ := filepath.Abs(dir)
	l.Info("init project", slog.String("root", abs), slog.String("name", name))
	dh, err := storage.InitProject(abs, storage.Diagram{
		SchemaVersion: storage.CurrentSchemaVersion,
		Name:          name,
	})
	if err != nil {
		fail(l, "init failed", err)
	}
	fmt.Println("Created diagram project at", abs)
	return dh
}

func cmdOpen(l *slog.Logger, dir string) *storage.DiagramHandle {
	abs, _ := filepath.Abs(dir)
	l.Info("open project", slog.String("root", abs))
	dh, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	telemetry.Event("diagram_opened", map[string]any{
		"shapes":     len(dh.Diagram.Shapes),
		"connectors": len(dh.Diagram.Connectors),
	})
	fmt.Printf("Opened diagram: %s\n", dh.Diagram.Name)
	fmt.Printf("Shapes: %d, connectors: %d\n", len(dh.Diagram.Shapes), len(dh.Diagram.Connectors))
	fmt.Println("Root:", dh.Root)
	return dh
}

func cmdSave(l *slog.Logger, dir string) *storage.DiagramHandle {
	abs, _ := filepath.Abs(dir)
	l.Info("save project", slog.String("root", abs))
	dh, err := storage.Open(abs)
	if err != nil {
		fail(l, "open before save failed", err)
	}
	if err := storage.Save(dh); err != nil {
		fail(l, "save failed", err)
	}
	if err := storage.SaveSnapshot(context.Background(), dh, "autosave", time.Now()); err != nil {
		l.Warn("snapshot failed", slog.Any("err", err))
	}
	telemetry.Event("diagram_saved", nil)
	fmt.Println("Saved diagram and created a backup of the previous manifest (if any).")
	return dh
}

func cmdExport(l *slog.Logger, dir, format, out string) *storage.DiagramHandle {
	abs, _ := filepath.Abs(dir)
	dh, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	switch strings.ToLower(format) {
	case "pdf":
		if out == "" {
			out = "diagram.pdf"
		}
		if err := export.ExportDiagramPDF(dh, out, export.PDFOptions{}); err != nil {
			fail(l, "pdf export failed", err)
		}
		telemetry.Event("export_pdf", nil)
	case "svg":
		if out == "" {
			out = "diagram.svg"
		}
		if err := export.ExportDiagramSVG(dh, out, export.SVGOptions{}); err != nil {
			fail(l, "svg export failed", err)
		}
		telemetry.Event("export_svg", nil)
	case "mermaid":
		src := mermaid.Export(dh.Diagram.Shapes, dh.Diagram.Connectors, mermaid.DirLR)
		if out == "" {
			fmt.Print(src)
			return dh
		}
		if !filepath.IsAbs(out) {
			out = filepath.Join(dh.Root, "exports", out)
		}
		if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
			fail(l, "mermaid export failed", err)
		}
	default:
		fmt.Println("unknown export format:", format)
		os.Exit(2)
	}
	if out != "" {
		fmt.Println("Exported", format, "to", out)
	}
	return dh
}

func cmdImport(l *slog.Logger, dir, file string) *storage.DiagramHandle {
	abs, _ := filepath.Abs(dir)
	dh, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		fail(l, "read mermaid file failed", err)
	}
	// Keep a snapshot of the current document before replacing it.
	if err := storage.SaveSnapshot(context.Background(), dh, "pre-import", time.Now()); err != nil {
		l.Warn("pre-import snapshot failed", slog.Any("err", err))
	}
	doc, perrs := mermaid.Parse(string(data))
	for _, pe := range perrs {
		fmt.Printf("line %d: %s\n", pe.Line, pe.Message)
	}
	if len(doc.Nodes) == 0 {
		fail(l, "import failed", fmt.Errorf("no nodes found in %s", file))
	}
	shapes, connectors := mermaid.ToEntitiesWithTools(doc, projectTools(l, dh.Root))
	dh.Diagram.Shapes = shapes
	dh.Diagram.Connectors = connectors
	if err := storage.Save(dh); err != nil {
		fail(l, "save after import failed", err)
	}
	telemetry.Event("mermaid_imported", map[string]any{"nodes": len(doc.Nodes), "edges": len(doc.Edges)})
	fmt.Printf("Imported %d shapes and %d connectors from %s\n", len(shapes), len(connectors), file)
	return dh
}

func cmdGenerate(l *slog.Logger, dir, description string) *storage.DiagramHandle {
	cfg, token, err := config.Load()
	if err != nil {
		fail(l, "load config failed", err)
	}
	abs, _ := filepath.Abs(dir)
	dh, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	cli := assist.New(cfg.Assist, token)
	if !cli.Configured() {
		fail(l, "generate failed", assist.ErrNotConfigured)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	doc, perrs, err := cli.GenerateDocument(ctx, description)
	if err != nil {
		fail(l, "generate failed", err)
	}
	for _, pe := range perrs {
		fmt.Printf("line %d: %s\n", pe.Line, pe.Message)
	}
	if err := storage.SaveSnapshot(ctx, dh, "pre-import", time.Now()); err != nil {
		l.Warn("pre-import snapshot failed", slog.Any("err", err))
	}
	shapes, connectors := mermaid.ToEntitiesWithTools(doc, projectTools(l, dh.Root))
	dh.Diagram.Shapes = shapes
	dh.Diagram.Connectors = connectors
	if err := storage.Save(dh); err != nil {
		fail(l, "save after generate failed", err)
	}
	fmt.Printf("Generated %d shapes and %d connectors\n", len(shapes), len(connectors))
	return dh
}

// projectTools layers a project's palette files over the built-in palettes.
func projectTools(l *slog.Logger, root string) *toolset.Set {
	palettes, err := toolset.LoadDir(filepath.Join(root, "tools"))
	if err != nil {
		l.Warn("loading project palettes failed", slog.Any("err", err))
	}
	return toolset.NewSet(palettes...)
}

func cmdTools(l *slog.Logger, sub string, rest []string) {
	abs, _ := filepath.Abs(rest[0])
	switch sub {
	case "list":
		for _, p := range projectTools(l, abs).Palettes() {
			fmt.Printf("%s:\n", p.Name)
			ids := make([]string, 0, len(p.Tools))
			for id := range p.Tools {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				td := p.Tools[id]
				fmt.Printf("  %-14s %s %.0fx%.0f\n", id, td.ShapeType, td.Width, td.Height)
			}
		}
	case "pack":
		if len(rest) < 2 {
			fmt.Println("tools pack requires <dir> and <out.zip>")
			os.Exit(2)
		}
		if err := toolset.ExportPack(abs, rest[1]); err != nil {
			fail(l, "tool pack export failed", err)
		}
		fmt.Println("Exported tool pack to", rest[1])
	case "install":
		if len(rest) < 2 {
			fmt.Println("tools install requires <dir> and <pack>")
			os.Exit(2)
		}
		n, err := toolset.InstallPack(abs, rest[1])
		if err != nil {
			fail(l, "tool pack install failed", err)
		}
		fmt.Printf("Installed %d palette files.\n", n)
	default:
		fmt.Println("unknown tools subcommand:", sub)
		os.Exit(2)
	}
}

func cmdSnapshots(l *slog.Logger, dir string, limit int) {
	abs, _ := filepath.Abs(dir)
	infos, err := storage.ListSnapshots(context.Background(), abs, limit)
	if err != nil {
		fail(l, "list snapshots failed", err)
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots.")
		return
	}
	for _, si := range infos {
		fmt.Printf("%s  %s\n", si.TS.Format(time.RFC3339), si.Reason)
	}
}

func cmdSync(l *slog.Logger, sub string, rest []string) *storage.DiagramHandle {
	cfg, _, err := config.Load()
	if err != nil {
		fail(l, "load config failed", err)
	}
	if !cfg.General.EnableSync {
		fmt.Println("Sync is disabled. Enable it in the config (general.enable_sync) or set " + config.EnvEnableSync + "=1.")
		os.Exit(2)
	}
	cli := backend.NewClient(cfg.Sync.BaseURL, "", time.Duration(cfg.Sync.TimeoutMs)*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tok, err := cli.FetchToken(ctx, "cli")
	if err != nil {
		fail(l, "sync auth failed", err)
	}
	cli.Token = tok

	switch sub {
	case "list":
		list, err := cli.ListDiagrams(ctx)
		if err != nil {
			fail(l, "sync list failed", err)
		}
		for _, d := range list {
			fmt.Printf("%-6d v%-4d %-24s %s\n", d.ID, d.Version, d.Name, d.UpdatedAt.Format(time.RFC3339))
		}
		return nil
	case "push":
		if len(rest) < 1 {
			fmt.Println("sync push requires <dir>")
			os.Exit(2)
		}
		abs, _ := filepath.Abs(rest[0])
		dh, err := storage.Open(abs)
		if err != nil {
			fail(l, "open failed", err)
		}
		doc, err := json.Marshal(dh.Diagram)
		if err != nil {
			fail(l, "encode diagram failed", err)
		}
		res, err := cli.Push(ctx, backend.PushRequest{
			StableID: stableID(dh.Root),
			Name:     dh.Diagram.Name,
			Document: doc,
		})
		if err != nil {
			fail(l, "sync push failed", err)
		}
		fmt.Printf("Pushed as diagram %d, version %d\n", res.ID, res.Version)
		return dh
	case "pull":
		if len(rest) < 2 {
			fmt.Println("sync pull requires <dir> and <id>")
			os.Exit(2)
		}
		id, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			fail(l, "sync pull failed", fmt.Errorf("invalid diagram id %q", rest[1]))
		}
		env, err := cli.GetLatest(ctx, id)
		if err != nil {
			fail(l, "sync pull failed", err)
		}
		abs, _ := filepath.Abs(rest[0])
		var d storage.Diagram
		if err := json.Unmarshal(env.Document, &d); err != nil {
			fail(l, "decode pulled diagram failed", err)
		}
		dh, err := storage.InitProject(abs, d)
		if err != nil {
			fail(l, "write pulled diagram failed", err)
		}
		fmt.Printf("Pulled diagram %d (v%d) into %s\n", env.DiagramID, env.Version, abs)
		return dh
	default:
		fmt.Println("unknown sync subcommand:", sub)
		os.Exit(2)
		return nil
	}
}

// stableID returns the project's sync identity, minting one on first use.
func stableID(root string) string {
	p := filepath.Join(root, storage.IndexDirName, "stable_id")
	if b, err := os.ReadFile(p); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	_ = os.WriteFile(p, []byte(id+"\n"), 0o644)
	return id
}
