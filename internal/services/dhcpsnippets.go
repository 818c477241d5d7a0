package services

import (
	"regiond/internal/models"
	"regiond/internal/repositories"
)

type DHCPSnippetsService struct {
	*BaseService[models.DHCPSnippet]
}

func NewDHCPSnippetsService(repo *repositories.DHCPSnippetsRepository) *DHCPSnippetsService {
	return &DHCPSnippetsService{NewBaseService[models.DHCPSnippet](repo, nil)}
}
