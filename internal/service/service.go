package service

import (
	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/adapter/imagestore"
	"invoicechat/backend/internal/adapter/render"
	"invoicechat/backend/internal/config"
	store "invoicechat/backend/internal/repository"
	"invoicechat/backend/policy"
)

type Service struct {
	store        store.Store
	extractor    extract.Extractor
	renderer     render.Renderer
	images       imagestore.Store
	config       *config.Config
	policyEngine *policy.Engine
	locks        *sessionLocks
}

func New(st store.Store, extractor extract.Extractor, renderer render.Renderer, images imagestore.Store, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        st,
		extractor:    extractor,
		renderer:     renderer,
		images:       images,
		config:       cfg,
		policyEngine: policyEngine,
		locks:        newSessionLocks(),
	}
}
