package usecase

import (
	"context"
	"log/slog"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

// Provision runs the five-step creation pipeline: asset upload, creative,
// campaign, ad group, ad. Steps run strictly in order and the first failure
// aborts the run; the returned *domain.PipelineError then carries the
// gap-free prefix of created ids for manual cleanup. There is no retry of a
// pipeline instance and no automatic compensation; re-invoking after a
// partial failure creates duplicate remote objects.
func (s *CampaignService) Provision(ctx context.Context, spec domain.CampaignSpec) (*port.ProvisionResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	// refuse reused ids before any remote object is created
	if existing, err := s.store.Campaign(ctx, spec.InternalID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domain.ValidationError{Msg: "campaign " + spec.InternalID + " already exists"}
	}
	acc, err := s.store.Account(ctx, spec.ClientAccountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, &domain.ConfigError{Msg: "account " + spec.ClientAccountID + " not found"}
	}
	if err := domain.ValidateAccountID(acc.AccountID); err != nil {
		return nil, err
	}
	if len(spec.Geo.Countries) == 0 {
		spec.Geo = domain.DefaultGeo
	}

	logger := s.logger.With(slog.String("campaign", spec.InternalID))
	logger.Info("starting campaign provisioning", slog.String("name", spec.Name))

	chain, err := s.runPipeline(ctx, logger, &spec, acc)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := domain.CampaignRecord{
		InternalID:      spec.InternalID,
		ClientAccountID: spec.ClientAccountID,
		AccountID:       acc.AccountID,
		Name:            spec.Name,
		Status:          domain.StatusPaused,
		DailyBudget:     spec.DailyBudget,
		Remote:          chain.IDs(),
		CreatedAt:       now,
		LastUpdated:     now,
	}
	if err := s.store.AddCampaign(ctx, rec); err != nil {
		return nil, err
	}
	logger.Info("campaign provisioned",
		slog.String("remote_campaign", rec.Remote.CampaignID),
		slog.String("ad_group", rec.Remote.AdGroupID),
		slog.String("ad", rec.Remote.AdID))

	result := &port.ProvisionResult{Record: rec}
	if spec.StartTime != nil {
		if spec.StartTime.After(s.now()) {
			job, err := s.scheduleJob(ctx, &rec, *spec.StartTime)
			if err != nil {
				return nil, err
			}
			result.Scheduled = job
		} else {
			logger.Warn("start_time is in the past, skipping auto-scheduling",
				slog.Time("start_time", *spec.StartTime))
		}
	}
	return result, nil
}

// runPipeline executes the five creation steps, accumulating the resource
// chain. Step n+1 only runs after step n returned an id.
func (s *CampaignService) runPipeline(ctx context.Context, logger *slog.Logger, spec *domain.CampaignSpec, acc *domain.AccountConfig) (domain.ResourceChain, error) {
	chain := domain.ResourceChain{}
	fail := func(err error) (domain.ResourceChain, error) {
		logger.Error("pipeline aborted",
			slog.String("step", string(chain.Next())),
			slog.Int("objects_created", len(chain)),
			slog.Any("error", err))
		return chain, &domain.PipelineError{Step: chain.Next(), Chain: chain, Err: err}
	}

	logger.Info("step 1/5: uploading asset", slog.String("path", spec.AssetPath))
	assetID, err := s.gw.UploadAsset(ctx, acc.AccountID, spec.AssetPath)
	if err != nil {
		return fail(err)
	}
	chain = chain.Append(domain.KindAsset, assetID)

	logger.Info("step 2/5: creating video creative")
	thumbnail, err := s.gw.AssetThumbnail(ctx, assetID)
	if err != nil {
		return fail(err)
	}
	creativeID, err := s.gw.Create(ctx, domain.KindCreative, acc.AccountID, creativeParams(spec, acc, assetID, thumbnail))
	if err != nil {
		return fail(err)
	}
	chain = chain.Append(domain.KindCreative, creativeID)

	logger.Info("step 3/5: creating campaign")
	campaignID, err := s.gw.Create(ctx, domain.KindCampaign, acc.AccountID, campaignParams(spec))
	if err != nil {
		return fail(err)
	}
	chain = chain.Append(domain.KindCampaign, campaignID)

	logger.Info("step 4/5: creating ad group")
	params := s.adGroupParams(logger, spec, acc, campaignID)
	adGroupID, err := s.gw.Create(ctx, domain.KindAdGroup, acc.AccountID, params)
	if err != nil {
		return fail(err)
	}
	chain = chain.Append(domain.KindAdGroup, adGroupID)

	logger.Info("step 5/5: creating ad")
	adID, err := s.gw.Create(ctx, domain.KindAd, acc.AccountID, adParams(spec, adGroupID, creativeID))
	if err != nil {
		return fail(err)
	}
	chain = chain.Append(domain.KindAd, adID)

	return chain, nil
}

func creativeParams(spec *domain.CampaignSpec, acc *domain.AccountConfig, assetID, thumbnail string) port.Params {
	return port.Params{
		"name": "Video Creative - " + spec.Headline,
		"object_story_spec": map[string]any{
			"page_id": acc.PageID,
			"video_data": map[string]any{
				"video_id": assetID,
				// a thumbnail reference is mandatory for video ads
				"image_url":        thumbnail,
				"message":          spec.PrimaryText,
				"title":            spec.Headline,
				"link_description": spec.Description,
				"call_to_action": map[string]any{
					"type":  spec.CTA(),
					"value": map[string]any{"link": spec.LinkURL()},
				},
			},
		},
	}
}

func campaignParams(spec *domain.CampaignSpec) port.Params {
	return port.Params{
		"name":                  spec.Name,
		"objective":             "OUTCOME_SALES",
		"status":                string(domain.StatusPaused),
		"special_ad_categories": []string{},
		// campaign budget optimization: the budget lives here, not on the
		// ad group
		"daily_budget": spec.DailyBudget,
		"bid_strategy": "LOWEST_COST_WITHOUT_CAP",
		"buying_type":  "AUCTION",
	}
}

func (s *CampaignService) adGroupParams(logger *slog.Logger, spec *domain.CampaignSpec, acc *domain.AccountConfig, campaignID string) port.Params {
	params := port.Params{
		"name":              spec.Name + " - AdSet",
		"campaign_id":       campaignID,
		"optimization_goal": "OFFSITE_CONVERSIONS",
		"billing_event":     "IMPRESSIONS",
		"promoted_object": map[string]any{
			"pixel_id":          acc.PixelID,
			"custom_event_type": "PURCHASE",
		},
		"targeting": map[string]any{
			"age_min":       18,
			"age_max":       65,
			"geo_locations": map[string]any{"countries": spec.Geo.Countries},
			"targeting_automation": map[string]any{
				"advantage_audience": 1,
				"individual_setting": map[string]any{"age": 1, "gender": 1},
			},
		},
		"status": string(domain.StatusPaused),
	}

	// instruct the platform itself not to spend before the activation
	// instant, independently of the local scheduler
	if spec.StartTime != nil && spec.StartTime.After(s.now()) {
		start := spec.StartTime.In(domain.ActivationZone).Format(domain.StartTimeLayout)
		params["start_time"] = start
		logger.Info("setting ad group start_time", slog.String("start_time", start))
	}

	if spec.Geo.IncludesSingapore() {
		params["regional_regulated_categories"] = []string{"SINGAPORE_UNIVERSAL"}
		if acc.BeneficiaryID != "" {
			params["regional_regulation_identities"] = map[string]any{
				"singapore_universal_beneficiary": acc.BeneficiaryID,
				"singapore_universal_payer":       acc.BeneficiaryID,
			}
			logger.Info("added Singapore beneficiary", slog.String("beneficiary", acc.BeneficiaryID))
		} else {
			logger.Warn("no beneficiary_id configured for Singapore targeting")
		}
	}
	return params
}

func adParams(spec *domain.CampaignSpec, adGroupID, creativeID string) port.Params {
	return port.Params{
		"name":     spec.Name + " - Ad",
		"adset_id": adGroupID,
		"creative": map[string]any{"creative_id": creativeID},
		"status":   string(domain.StatusPaused),
	}
}
