package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	laz "github.com/lazrpc/lazgo"
	"github.com/lazrpc/lazgo/lazgen"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate a typed Go client from a server's metadata."`
	Inspect InspectCmd `cmd:"" help:"List the functions and endpoints a server publishes."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type GenCmd struct {
	Out     string `arg:"" help:"Output directory for the generated client."`
	Server  string `help:"Server base URL." default:"http://localhost:5150" short:"s"`
	Package string `help:"Package name of the generated file." default:"lazclient" short:"p"`
	File    string `help:"Name of the generated file." default:"client.gen.go"`
	Cache   string `help:"Metadata cache file; skips regeneration when the server is unchanged."`
	OpenAPI string `help:"OpenAPI document URL used for endpoints when discovery is empty." name:"openapi"`
}

func (c *GenCmd) Run() error {
	res, err := lazgen.Generate(context.Background(), &lazgen.Config{
		ServerURL:  c.Server,
		OutDir:     c.Out,
		FileName:   c.File,
		Package:    c.Package,
		CacheFile:  c.Cache,
		OpenAPIURL: c.OpenAPI,
	})
	if err != nil {
		return err
	}

	if res.Skipped {
		fmt.Printf("metadata unchanged, %s is up to date\n", res.Path)
		return nil
	}
	fmt.Printf("wrote %s: %d functions, %d types\n", res.Path, res.Functions, res.Types)
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s: %s\n", w.TypeName, w.Message)
	}
	return nil
}

type InspectCmd struct {
	Server string `arg:"" help:"Server base URL."`
}

func (c *InspectCmd) Run() error {
	ctx := context.Background()
	raw, err := laz.FetchMetadata(ctx, nil, c.Server)
	if err != nil {
		return err
	}
	snap, err := laz.ParseSnapshot(raw)
	if err != nil {
		return err
	}

	fmt.Printf("%d functions:\n", len(snap.Functions))
	for _, name := range snap.FunctionNames() {
		fn := snap.Functions[name]
		kind := "read"
		if fn.IsMutation {
			kind = "mutation"
		}
		sig := name
		if fn.InputTypeName != "" {
			sig += "(" + fn.InputTypeName + ")"
		} else {
			sig += "()"
		}
		fmt.Printf("  %s -> %s  [%s]\n", sig, fn.OutputTypeName, kind)
	}

	fmt.Printf("%d endpoints:\n", len(snap.Endpoints))
	for _, ep := range snap.Endpoints {
		fmt.Printf("  %s %s\n", strings.Join(ep.Methods, ","), ep.URI)
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("laz"),
		kong.Description("Typed client generation for laz RPC servers."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
