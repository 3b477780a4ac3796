package translator

import (
	"context"
	"fmt"

	"github.com/valpere/doctran/internal/placeholder"
)

// ProtectService hides code, markup, links and template variables from the
// wrapped service and restores them in the answer. An answer that lost a
// marker is a failed translation, since the span could not be put back.
type ProtectService struct {
	next TranslationService
}

func WithPlaceholders(next TranslationService) *ProtectService {
	return &ProtectService{next: next}
}

func (p *ProtectService) Name() string {
	return p.next.Name()
}

func (p *ProtectService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	protected, originals := placeholder.Protect(req.Text)
	if len(originals) == 0 {
		return p.next.Translate(ctx, cfg, req)
	}

	req.Text = protected
	res, err := p.next.Translate(ctx, cfg, req)
	if err != nil {
		return res, err
	}

	if missing := placeholder.Missing(res.TranslatedText, originals); len(missing) > 0 {
		err := fmt.Errorf("%d of %d protected spans lost in translation", len(missing), len(originals))
		res.Error = err.Error()
		return res, NewError(p.Name(), KindProvider, err)
	}
	res.TranslatedText = placeholder.Restore(res.TranslatedText, originals)
	return res, nil
}

func (p *ProtectService) IsAvailable(ctx context.Context) error {
	return p.next.IsAvailable(ctx)
}
