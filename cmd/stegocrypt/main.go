// stegocrypt hides AES-256 encrypted messages in the low bits of images.
//
// Usage:
//
//	stegocrypt [-config <file>] hide -m <message> -i <cover> [-o <stego>] [-k <key>] [--reuse-key]
//	stegocrypt [-config <file>] reveal [-i <stego>] [-k <key>]
//	stegocrypt [-config <file>] keygen [-k <key>]
//	stegocrypt [-config <file>] split [-k <key>] -n <shares> -t <threshold> [-p <prefix>]
//	stegocrypt [-config <file>] combine -o <key> <share>...
//	stegocrypt [-config <file>] capacity -i <image>
//	stegocrypt [-config <file>] serve [-addr :8080]
//	stegocrypt [-config <file>] token [-name <label>] [-a hide,reveal,capacity] [-ttl 720h]
//
// Images and keys may be local paths or s3://bucket/object references when
// an S3 endpoint is configured.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hasbyte1/go-stegocrypt/apitoken"
	"github.com/hasbyte1/go-stegocrypt/config"
	"github.com/hasbyte1/go-stegocrypt/imagestore"
	"github.com/hasbyte1/go-stegocrypt/keystore"
	"github.com/hasbyte1/go-stegocrypt/logging"
	"github.com/hasbyte1/go-stegocrypt/lsb"
	"github.com/hasbyte1/go-stegocrypt/objstore"
	"github.com/hasbyte1/go-stegocrypt/server"
	"github.com/hasbyte1/go-stegocrypt/stego"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stegocrypt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "help" {
		printUsage(stdout)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, stdout, stderr)
	if err != nil {
		return err
	}

	switch cmd {
	case "hide":
		return a.runHide(ctx, rest)
	case "reveal":
		return a.runReveal(ctx, rest)
	case "keygen":
		return a.runKeygen(ctx, rest)
	case "split":
		return a.runSplit(ctx, rest)
	case "combine":
		return a.runCombine(ctx, rest)
	case "capacity":
		return a.runCapacity(ctx, rest)
	case "serve":
		return a.runServe(ctx, rest)
	case "token":
		return a.runToken(rest)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// app holds what every subcommand needs, built once from the configuration.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	blobs  *objstore.Router
	images *imagestore.Store
	keys   *keystore.Store
	text   stego.TextEncoding
	stdout io.Writer
	stderr io.Writer
}

func newApp(cfg *config.Config, stdout, stderr io.Writer) (*app, error) {
	log, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}
	text, err := stego.EncodingByName(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	var s3 *objstore.S3
	if cfg.S3.Enabled() {
		s3, err = objstore.NewS3(cfg.S3.Client())
		if err != nil {
			return nil, err
		}
	}
	blobs := objstore.NewRouter(s3)

	return &app{
		cfg:    cfg,
		log:    log,
		blobs:  blobs,
		images: imagestore.New(blobs),
		keys:   keystore.New(blobs),
		text:   text,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// codecOptions are shared by the CLI and the HTTP API.
func (a *app) codecOptions() []stego.Option {
	return []stego.Option{
		stego.WithImageStore(a.images),
		stego.WithTextEncoding(a.text),
		stego.WithNormalization(a.cfg.Normalize),
	}
}

func (a *app) codec(log logrus.FieldLogger) *stego.Codec {
	return stego.New(append(a.codecOptions(), stego.WithObserver(logging.Observer(log)))...)
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// ── Subcommands ──

func (a *app) runHide(ctx context.Context, args []string) error {
	fs := a.newFlagSet("hide")
	message := fs.String("m", "", "Message to hide")
	cover := fs.String("i", "", "Cover image")
	output := fs.String("o", a.cfg.StegoFile, "Output stego image (.png, .bmp or .tiff)")
	keyRef := fs.String("k", a.cfg.KeyFile, "Key file")
	reuse := fs.Bool("reuse-key", false, "Use the existing key file instead of generating a new key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cover == "" {
		return fmt.Errorf("%w: hide needs -i <cover>", errUsage)
	}

	var key []byte
	var err error
	if *reuse {
		key, err = a.keys.Load(ctx, *keyRef)
	} else {
		key, err = keystore.Generate()
	}
	if err != nil {
		return err
	}
	defer keystore.Wipe(key)

	log := logging.WithOperation(a.log, stego.OpHide).WithFields(logging.KeyFields(key))
	if err := a.codec(log).HideImage(ctx, *message, *cover, *output, key); err != nil {
		return err
	}
	if !*reuse {
		if err := a.keys.Save(ctx, *keyRef, key); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Key saved to: %s (keep it safe, it is needed to reveal the message)\n", *keyRef)
	}
	fmt.Fprintf(a.stdout, "Stego image saved to: %s\n", *output)
	return nil
}

func (a *app) runReveal(ctx context.Context, args []string) error {
	fs := a.newFlagSet("reveal")
	input := fs.String("i", a.cfg.StegoFile, "Stego image")
	keyRef := fs.String("k", a.cfg.KeyFile, "Key file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := a.keys.Load(ctx, *keyRef)
	if err != nil {
		return err
	}
	defer keystore.Wipe(key)

	log := logging.WithOperation(a.log, stego.OpReveal).WithFields(logging.KeyFields(key))
	message, err := a.codec(log).RevealImage(ctx, *input, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, message)
	return nil
}

func (a *app) runKeygen(ctx context.Context, args []string) error {
	fs := a.newFlagSet("keygen")
	keyRef := fs.String("k", a.cfg.KeyFile, "Key file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := keystore.Generate()
	if err != nil {
		return err
	}
	defer keystore.Wipe(key)
	if err := a.keys.Save(ctx, *keyRef, key); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Key %s saved to: %s\n", keystore.Fingerprint(key), *keyRef)
	return nil
}

func (a *app) runSplit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("split")
	keyRef := fs.String("k", a.cfg.KeyFile, "Key file to split")
	n := fs.Int("n", 5, "Number of shares")
	threshold := fs.Int("t", 3, "Shares needed to recover the key")
	prefix := fs.String("p", "", "Share file prefix (default: the key file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *prefix == "" {
		*prefix = *keyRef
	}

	key, err := a.keys.Load(ctx, *keyRef)
	if err != nil {
		return err
	}
	defer keystore.Wipe(key)

	shares, err := keystore.Split(key, *n, *threshold)
	if err != nil {
		return err
	}
	for i, s := range shares {
		ref := *prefix + ".share" + strconv.Itoa(i+1)
		if err := a.blobs.Put(ctx, ref, s.Marshal(), objstore.PutOptions{Private: true}); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, ref)
	}
	a.log.WithFields(logging.KeyFields(key)).Infof("split key into %d shares, %d needed", *n, *threshold)
	return nil
}

func (a *app) runCombine(ctx context.Context, args []string) error {
	fs := a.newFlagSet("combine")
	keyRef := fs.String("o", a.cfg.KeyFile, "Key file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: combine needs share files", errUsage)
	}

	shares := make([]keystore.Share, 0, fs.NArg())
	for _, ref := range fs.Args() {
		data, err := a.blobs.Get(ctx, ref)
		if err != nil {
			return err
		}
		s, err := keystore.UnmarshalShare(data)
		if err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
		shares = append(shares, s)
	}

	key, err := keystore.Combine(shares)
	if err != nil {
		return err
	}
	defer keystore.Wipe(key)
	if err := a.keys.Save(ctx, *keyRef, key); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Key %s saved to: %s\n", keystore.Fingerprint(key), *keyRef)
	return nil
}

func (a *app) runCapacity(ctx context.Context, args []string) error {
	fs := a.newFlagSet("capacity")
	input := fs.String("i", "", "Image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("%w: capacity needs -i <image>", errUsage)
	}

	img, format, err := a.images.LoadFormat(ctx, *input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s %s: %d payload bits, up to %d message bytes\n",
		format, img.Shape, lsb.Capacity(img), max(stego.MaxMessageBytes(img), 0))
	if !format.Lossless() {
		fmt.Fprintf(a.stdout, "note: %s covers must be saved as .png, .bmp or .tiff\n", format)
	}
	return nil
}

func (a *app) runServe(ctx context.Context, args []string) error {
	fs := a.newFlagSet("serve")
	addr := fs.String("addr", a.cfg.Server.Address, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts := []server.Option{
		server.WithMaxUpload(a.cfg.Server.MaxUploadMB << 20),
		server.WithCodecOptions(
			stego.WithTextEncoding(a.text),
			stego.WithNormalization(a.cfg.Normalize),
		),
	}
	if len(a.cfg.Server.Tokens) > 0 {
		set, err := apitoken.NewSet(a.cfg.Server.Tokens...)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithTokens(set))
		a.log.WithField("tokens", set.Len()).Info("API tokens required")
	}
	return server.New(a.log, opts...).ListenAndServe(ctx, *addr)
}

func (a *app) runToken(args []string) error {
	fs := a.newFlagSet("token")
	name := fs.String("name", "", "Label for the token")
	abilities := fs.String("a", apitoken.Wildcard, "Comma-separated abilities: hide, reveal, capacity or *")
	ttl := fs.Duration("ttl", 0, "Lifetime of the token (0 means no expiry)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var expiresAt *time.Time
	if *ttl > 0 {
		e := time.Now().Add(*ttl).UTC().Truncate(time.Second)
		expiresAt = &e
	}
	tok, plain, err := apitoken.Generate(*name, strings.Split(*abilities, ","), expiresAt)
	if err != nil {
		return err
	}

	entry, err := yaml.Marshal(map[string]any{"server": map[string]any{"tokens": []*apitoken.Token{tok}}})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Token (shown once): %s\n\nAdd to the configuration file:\n\n%s", plain, entry)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", stego.Describe(err))
	os.Exit(1)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `stegocrypt: hide encrypted messages in images

USAGE:
    stegocrypt [-config <file>] <command> [options]

COMMANDS:
    hide -m <msg> -i <cover> [-o <stego>] [-k <key>] [--reuse-key]
                           Encrypt a message and hide it in a copy of the cover.
                           A new key is generated unless --reuse-key is given.
    reveal [-i <stego>] [-k <key>]
                           Print the message hidden in a stego image.
    keygen [-k <key>]      Write a new random key.
    split [-k <key>] -n <shares> -t <threshold> [-p <prefix>]
                           Split a key into Shamir shares.
    combine -o <key> <share>...
                           Recover a key from shares.
    capacity -i <image>    Show how much an image can hold.
    serve [-addr :8080]    Run the HTTP API.
    token [-name <label>] [-a <abilities>] [-ttl <duration>]
                           Create an API token for server.tokens.

Images and keys may be s3://bucket/object references when S3 is configured
(S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_REGION, S3_USE_SSL).
`)
}
