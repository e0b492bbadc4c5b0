package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/instantbranding/brandkit/internal/client/models"
	"github.com/instantbranding/brandkit/internal/common"
)

const defaultAssetType = "social-post"

var errUsage = errors.New("invalid arguments")

func usage(text string) error {
	return fmt.Errorf("%w, usage: %s", errUsage, text)
}

func (a *App) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func (a *App) requireSignedIn() error {
	if !a.isSignedIn() {
		return common.ErrAuthenticationRequired
	}
	return nil
}

// firstBrandID returns the id of the newest brand of the account, or "".
func (a *App) firstBrandID(ctx context.Context) (string, error) {
	brands, err := a.authed(ctx).ListBrands(ctx)
	if err != nil {
		return "", err
	}
	if len(brands) == 0 {
		return "", nil
	}
	id, _ := brands[0]["id"].(string)
	return id, nil
}

// BrandSet edits the draft brand while signed out and the account's brand
// once signed in.
func (a *App) BrandSet(ctx context.Context, args []string) error {
	delta, err := models.ParseAssignments(args)
	if err != nil {
		return err
	}
	if len(delta) == 0 {
		return usage("brand set name=value...")
	}

	if !a.isSignedIn() {
		d, err := a.drafts.SaveBrand(ctx, delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Draft brand updated (%d fields). Sign in to keep it.\n", len(d.Brand))
		return nil
	}

	if _, ok := delta["id"]; !ok {
		id, err := a.firstBrandID(ctx)
		if err != nil {
			return err
		}
		if id != "" {
			delta["id"] = id
		}
	}
	res, err := a.authed(ctx).UpsertBrand(ctx, delta)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Brand %s: %v\n", res.Action, res.Record["id"])
	return nil
}

func (a *App) BrandShow(ctx context.Context) error {
	if !a.isSignedIn() {
		d := a.drafts.Read(ctx)
		if !d.HasBrandData() {
			fmt.Fprintln(a.out, "No draft brand yet.")
			return nil
		}
		return a.printJSON(d.Brand)
	}

	brands, err := a.authed(ctx).ListBrands(ctx)
	if err != nil {
		return err
	}
	if len(brands) == 0 {
		fmt.Fprintln(a.out, "No brands yet.")
		return nil
	}
	return a.printJSON(brands[0])
}

func (a *App) DesignAdd(ctx context.Context, args []string) error {
	fields, err := models.ParseAssignments(args)
	if err != nil {
		return err
	}

	if !a.isSignedIn() {
		design, err := draftDesign(fields)
		if err != nil {
			return err
		}
		saved, err := a.drafts.SaveDesign(ctx, design)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Draft design added: %s\n", saved.TempID)
		return nil
	}

	if _, ok := fields["asset_type"]; !ok {
		fields["asset_type"] = defaultAssetType
	}
	if _, ok := fields["brand_id"]; !ok {
		id, err := a.firstBrandID(ctx)
		if err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("create a brand first: %w", common.ErrRelatedNotFound)
		}
		fields["brand_id"] = id
	}
	res, err := a.authed(ctx).UpsertDesign(ctx, fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Design %s: %v\n", res.Action, res.Record["id"])
	return nil
}

// draftDesign builds a draft design from asset_type, template_id, style_id
// and data.
func draftDesign(fields map[string]any) (models.DraftDesign, error) {
	d := models.DraftDesign{AssetType: defaultAssetType}

	if v, ok := fields["asset_type"].(string); ok && v != "" {
		d.AssetType = v
	}
	for name, dst := range map[string]*int{"template_id": &d.TemplateID, "style_id": &d.StyleID} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		n, ok := v.(int)
		if !ok {
			return models.DraftDesign{}, common.NewValidationError(name, "must be a number")
		}
		*dst = n
	}
	if v, ok := fields["data"]; ok {
		raw, err := json.Marshal(v)
		if err != nil {
			return models.DraftDesign{}, err
		}
		d.Data = raw
	}
	return d, nil
}

func (a *App) DesignRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("design rm <id>")
	}
	if !a.isSignedIn() {
		if err := a.drafts.RemoveDesign(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Draft design removed.")
		return nil
	}
	if err := a.authed(ctx).DeleteDesign(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Design deleted.")
	return nil
}

func (a *App) DraftShow(ctx context.Context) error {
	d := a.drafts.Read(ctx)
	if d == nil {
		fmt.Fprintln(a.out, "No local draft.")
		return nil
	}
	return a.printJSON(d)
}

func (a *App) DraftClear(ctx context.Context) error {
	a.drafts.Clear(ctx)
	fmt.Fprintln(a.out, "Local draft cleared.")
	return nil
}

// SignIn parks the draft, verifies token with the API, stores it and runs
// the draft migration.
func (a *App) SignIn(ctx context.Context, args []string) error {
	var token string
	switch len(args) {
	case 0:
		t, err := GetSecret("Paste your access token", a.out)
		if err != nil {
			return err
		}
		token = t
	case 1:
		token = args[0]
	default:
		return usage("signin [token]")
	}
	if token == "" {
		return usage("signin [token]")
	}

	if _, err := a.migration.PrepareSignIn(ctx); err != nil {
		a.log.Warn(ctx, "park draft before sign-in", "error", err)
	}

	me, err := a.api.WithToken(token).Me(ctx)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	if err := a.sessions.SetToken(ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %v.\n", me["email"])

	a.migration.Reset()
	a.migration.OnAuthenticated(ctx, token)
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.migration.Reset()
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) Brands(ctx context.Context) error {
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	brands, err := a.authed(ctx).ListBrands(ctx)
	if err != nil {
		return err
	}
	if len(brands) == 0 {
		fmt.Fprintln(a.out, "No brands yet.")
	}
	for _, b := range brands {
		fmt.Fprintf(a.out, "%v\t%v\n", b["id"], b["name"])
	}
	return nil
}

func (a *App) Me(ctx context.Context) error {
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	me, err := a.authed(ctx).Me(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(me)
}

func (a *App) Onboard(ctx context.Context) error {
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	me, err := a.authed(ctx).CompleteOnboarding(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Onboarding %v.\n", me["onboarding_status"])
	return nil
}

func (a *App) Generate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("generate <brand_id> <hook>")
	}
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	post, err := a.authed(ctx).GeneratePost(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, post["content"])
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 2 || (args[0] != "s3" && args[0] != "r2") {
		return usage("upload <s3|r2> <path>")
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	name := filepath.Base(args[1])
	cred, err := a.authed(ctx).Upload(ctx, args[0], name, contentTypeOf(name, data), data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, cred.PublicURL)
	return nil
}

// contentTypeOf guesses from the extension first and the bytes second.
func contentTypeOf(name string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		ct, _, _ = strings.Cut(ct, ";")
		return ct
	}
	ct, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return ct
}
