package policy

import (
	"promptlib/cmd/internal/domain/entity"
	"promptlib/cmd/internal/utils/apierror"
)

// PromptPolicy encapsulates the lock rules for prompt mutation.
// It returns apierror.ErrorResponse directly for seamless integration with handlers.
type PromptPolicy struct{}

func NewPromptPolicy() *PromptPolicy {
	return &PromptPolicy{}
}

func (p *PromptPolicy) CanSee(prompt *entity.Prompt) apierror.ErrorResponse {
	if prompt == nil {
		return apierror.NotFoundError
	}
	return nil
}

func (p *PromptPolicy) CanUpdate(prompt *entity.Prompt) apierror.ErrorResponse {
	if err := p.CanSee(prompt); err != nil {
		return err
	}

	if prompt.Locked {
		return apierror.PromptLockedUpdateError
	}
	return nil
}

func (p *PromptPolicy) CanDelete(prompt *entity.Prompt) apierror.ErrorResponse {
	if err := p.CanSee(prompt); err != nil {
		return err
	}

	if prompt.Locked {
		return apierror.PromptLockedDeleteError
	}
	return nil
}

// CanSetLock never checks the current lock state: flipping the flag is the
// only way out of the locked state.
func (p *PromptPolicy) CanSetLock(prompt *entity.Prompt) apierror.ErrorResponse {
	return p.CanSee(prompt)
}
