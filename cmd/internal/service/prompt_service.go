package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/patrickmn/go-cache"
	"promptlib/cmd/internal/contract"
	"promptlib/cmd/internal/domain/entity"
	"promptlib/cmd/internal/domain/policy"
	"promptlib/cmd/internal/observability"
	"promptlib/cmd/internal/utils/apierror"
	"sync"
	"time"
)

const (
	listCacheKey = "prompts:all"
	listCacheTTL = 30 * time.Second
)

type PromptRepository interface {
	FindAll() ([]*entity.Prompt, error)
	FindByID(id int) (*entity.Prompt, error)
	Count() (int64, error)
	Create(prompt *entity.Prompt) error
	Save(prompt *entity.Prompt) error
	SetLocked(id int, locked bool) error
	Delete(prompt *entity.Prompt) error
}

type PromptService struct {
	PromptRepo PromptRepository
	Policy     *policy.PromptPolicy
	Validate   *validator.Validate
	Metrics    *observability.PromptMetrics
	listCache  *cache.Cache

	// cacheMu guards listGen and every write to listCache. listGen changes
	// on each invalidation so a list read that raced a write is not cached.
	cacheMu sync.Mutex
	listGen uint64
}

func NewPromptService(
	promptRepo PromptRepository,
	promptPolicy *policy.PromptPolicy,
	validate *validator.Validate,
	metrics *observability.PromptMetrics,
) *PromptService {
	return &PromptService{
		PromptRepo: promptRepo,
		Policy:     promptPolicy,
		Validate:   validate,
		Metrics:    metrics,
		listCache:  cache.New(listCacheTTL, 2*listCacheTTL),
	}
}

func (s *PromptService) GetAllPrompts() ([]*contract.PromptResponse, apierror.ErrorResponse) {
	if cached, ok := s.listCache.Get(listCacheKey); ok {
		s.Metrics.RecordCache(true)
		return cached.([]*contract.PromptResponse), nil
	}
	s.Metrics.RecordCache(false)

	gen := s.generation()
	prompts, err := s.PromptRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch prompts: %v", err)
		s.Metrics.RecordOperation("list", observability.ResultError)
		return nil, apierror.InternalServerError
	}

	resp := ToPromptResponses(prompts)
	s.fillCache(gen, resp)
	s.Metrics.RecordOperation("list", observability.ResultOK)
	return resp, nil
}

func (s *PromptService) GetPromptByID(promptId int) (*contract.PromptResponse, apierror.ErrorResponse) {
	prompt, apierr := s.findPrompt("get", promptId)
	if apierr != nil {
		return nil, apierr
	}

	if apierr := s.Policy.CanSee(prompt); apierr != nil {
		s.Metrics.RecordOperation("get", observability.ResultNotFound)
		return nil, apierr
	}

	s.Metrics.RecordOperation("get", observability.ResultOK)
	return toPromptResponse(prompt), nil
}

func (s *PromptService) CreatePrompt(req *contract.PromptRequest) (*contract.CreatedResponse, apierror.ErrorResponse) {
	if apierr := s.validate(req); apierr != nil {
		s.Metrics.RecordOperation("create", observability.ResultInvalid)
		return nil, apierr
	}

	prompt := &entity.Prompt{
		Title:  req.Title,
		Body:   req.Body,
		Tags:   req.Tags,
		Locked: bool(req.Locked),
	}

	if err := s.PromptRepo.Create(prompt); err != nil {
		log.Errorf("failed to save prompt: %v", err)
		s.Metrics.RecordOperation("create", observability.ResultError)
		return nil, apierror.InternalServerError
	}

	s.invalidate()
	s.Metrics.RecordOperation("create", observability.ResultOK)
	return &contract.CreatedResponse{ID: prompt.ID}, nil
}

// UpdatePrompt overwrites every field of an unlocked prompt, including its
// lock flag. Locked prompts must be unlocked through SetLocked first.
func (s *PromptService) UpdatePrompt(promptId int, req *contract.PromptRequest) apierror.ErrorResponse {
	if apierr := s.validate(req); apierr != nil {
		s.Metrics.RecordOperation("update", observability.ResultInvalid)
		return apierr
	}

	prompt, apierr := s.findPrompt("update", promptId)
	if apierr != nil {
		return apierr
	}

	if apierr := s.Policy.CanUpdate(prompt); apierr != nil {
		s.Metrics.RecordOperation("update", resultOf(apierr))
		return apierr
	}

	prompt.Title = req.Title
	prompt.Body = req.Body
	prompt.Tags = req.Tags
	prompt.Locked = bool(req.Locked)

	if err := s.PromptRepo.Save(prompt); err != nil {
		log.Errorf("failed to update prompt %d: %v", promptId, err)
		s.Metrics.RecordOperation("update", observability.ResultError)
		return apierror.InternalServerError
	}

	s.invalidate()
	s.Metrics.RecordOperation("update", observability.ResultOK)
	return nil
}

func (s *PromptService) DeletePrompt(promptId int) apierror.ErrorResponse {
	prompt, apierr := s.findPrompt("delete", promptId)
	if apierr != nil {
		return apierr
	}

	if apierr := s.Policy.CanDelete(prompt); apierr != nil {
		s.Metrics.RecordOperation("delete", resultOf(apierr))
		return apierr
	}

	if err := s.PromptRepo.Delete(prompt); err != nil {
		log.Errorf("failed to delete prompt %d: %v", promptId, err)
		s.Metrics.RecordOperation("delete", observability.ResultError)
		return apierror.InternalServerError
	}

	s.invalidate()
	s.Metrics.RecordOperation("delete", observability.ResultOK)
	return nil
}

func (s *PromptService) SetLocked(promptId int, req *contract.LockRequest) apierror.ErrorResponse {
	if apierr := s.validateStruct(req); apierr != nil {
		s.Metrics.RecordOperation("lock", observability.ResultInvalid)
		return apierr
	}

	prompt, apierr := s.findPrompt("lock", promptId)
	if apierr != nil {
		return apierr
	}

	if apierr := s.Policy.CanSetLock(prompt); apierr != nil {
		s.Metrics.RecordOperation("lock", resultOf(apierr))
		return apierr
	}

	if err := s.PromptRepo.SetLocked(prompt.ID, bool(*req.Locked)); err != nil {
		log.Errorf("failed to set lock on prompt %d: %v", promptId, err)
		s.Metrics.RecordOperation("lock", observability.ResultError)
		return apierror.InternalServerError
	}

	s.invalidate()
	s.Metrics.RecordOperation("lock", observability.ResultOK)
	return nil
}

// CountPrompts bypasses the list cache.
func (s *PromptService) CountPrompts() (int64, error) {
	return s.PromptRepo.Count()
}

// findPrompt returns (nil, nil) when the prompt does not exist so the policy
// decides how a missing record is reported.
func (s *PromptService) findPrompt(operation string, promptId int) (*entity.Prompt, apierror.ErrorResponse) {
	prompt, err := s.PromptRepo.FindByID(promptId)
	if err != nil {
		log.Errorf("failed to fetch prompt %d: %v", promptId, err)
		s.Metrics.RecordOperation(operation, observability.ResultError)
		return nil, apierror.InternalServerError
	}
	return prompt, nil
}

// validate never rewrites the request: prompts are stored exactly as sent.
func (s *PromptService) validate(req *contract.PromptRequest) apierror.ErrorResponse {
	return s.validateStruct(req)
}

func (s *PromptService) validateStruct(req any) apierror.ErrorResponse {
	if err := s.Validate.Struct(req); err != nil {
		if serr := apierror.FromValidationError(err); serr != nil {
			return serr
		}
		log.Errorf("failed to validate prompt request: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *PromptService) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.listGen
}

func (s *PromptService) fillCache(gen uint64, resp []*contract.PromptResponse) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.listGen == gen {
		s.listCache.SetDefault(listCacheKey, resp)
	}
}

func (s *PromptService) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.listGen++
	s.listCache.Delete(listCacheKey)
}

func resultOf(apierr apierror.ErrorResponse) string {
	switch apierr.Code() {
	case 403:
		return observability.ResultLocked
	case 404:
		return observability.ResultNotFound
	case 400:
		return observability.ResultInvalid
	default:
		return observability.ResultError
	}
}

func toPromptResponse(prompt *entity.Prompt) *contract.PromptResponse {
	return &contract.PromptResponse{
		ID:     prompt.ID,
		Title:  prompt.Title,
		Body:   prompt.Body,
		Tags:   prompt.Tags,
		Locked: contract.Flag(prompt.Locked),
	}
}

// ToPromptResponses converts entities for callers outside the HTTP path,
// such as the snapshot job.
func ToPromptResponses(prompts []*entity.Prompt) []*contract.PromptResponse {
	resp := make([]*contract.PromptResponse, len(prompts))
	for i, prompt := range prompts {
		resp[i] = toPromptResponse(prompt)
	}
	return resp
}
