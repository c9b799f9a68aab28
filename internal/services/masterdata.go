package services

import (
	"context"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// MasterData is the catalog served to authoring and client UIs.
type MasterData struct {
	Products []*domain.Product `json:"products"`
	Partners []*domain.Partner `json:"partners"`
	Branches []*domain.Branch  `json:"branches"`
}

type MasterDataService interface {
	// Get lists active products, partners and branches. A non-empty
	// partnerCode narrows branches to that partner.
	Get(ctx context.Context, partnerCode string) (*MasterData, error)
}

type masterDataService struct {
	log         *logger.Logger
	productRepo repos.ProductRepo
	partnerRepo repos.PartnerRepo
	branchRepo  repos.BranchRepo
}

func NewMasterDataService(
	baseLog *logger.Logger,
	productRepo repos.ProductRepo,
	partnerRepo repos.PartnerRepo,
	branchRepo repos.BranchRepo,
) MasterDataService {
	return &masterDataService{
		log:         baseLog.With("service", "MasterDataService"),
		productRepo: productRepo,
		partnerRepo: partnerRepo,
		branchRepo:  branchRepo,
	}
}

func (s *masterDataService) Get(ctx context.Context, partnerCode string) (*MasterData, error) {
	products, err := s.productRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}
	partners, err := s.partnerRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}
	var branches []*domain.Branch
	if partnerCode != "" {
		branches, err = s.branchRepo.ListByPartner(ctx, nil, partnerCode)
	} else {
		branches, err = s.branchRepo.ListActive(ctx, nil)
	}
	if err != nil {
		return nil, err
	}
	return &MasterData{Products: products, Partners: partners, Branches: branches}, nil
}
