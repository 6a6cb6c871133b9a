package repository

import (
	"context"
	"fmt"

	"github.com/matviet/cdp-importer/internal/refmap/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) MessageSnapshot(ctx context.Context, db *gorm.DB) (domain.MessageSnapshot, error) {
	snap := domain.MessageSnapshot{
		CustomerByPhone:    make(map[string]int64),
		CampaignByTemplate: make(map[string]int64),
	}

	var phones []struct {
		Phone      string
		CustomerID int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT phone, customer_id FROM phone_customer_map`,
	).Scan(&phones).Error
	if err != nil {
		return domain.MessageSnapshot{}, fmt.Errorf("load phone map: %w", err)
	}
	for _, p := range phones {
		snap.CustomerByPhone[p.Phone] = p.CustomerID
	}

	var templates []struct {
		TemplateID     string
		CampaignTypeID int64
	}
	err = db.WithContext(ctx).Raw(
		`SELECT template_id, campaign_type_id FROM sms_template_campaign_map`,
	).Scan(&templates).Error
	if err != nil {
		return domain.MessageSnapshot{}, fmt.Errorf("load template map: %w", err)
	}
	for _, t := range templates {
		snap.CampaignByTemplate[t.TemplateID] = t.CampaignTypeID
	}

	var patterns []struct {
		Pattern        string
		CampaignTypeID int64
		Priority       int
	}
	err = db.WithContext(ctx).Raw(
		`SELECT pattern, campaign_type_id, priority
		 FROM sms_pattern_campaign_map
		 ORDER BY priority DESC`,
	).Scan(&patterns).Error
	if err != nil {
		return domain.MessageSnapshot{}, fmt.Errorf("load pattern map: %w", err)
	}
	for _, p := range patterns {
		snap.Patterns = append(snap.Patterns, domain.ContentPattern{
			Pattern:        p.Pattern,
			CampaignTypeID: p.CampaignTypeID,
			Priority:       p.Priority,
		})
	}

	return snap, nil
}

func (r *repo) OrderSnapshot(ctx context.Context, db *gorm.DB) (domain.OrderSnapshot, error) {
	snap := domain.OrderSnapshot{
		CustomerByCode: make(map[string]int64),
		StoreByCode:    make(map[string]int64),
	}

	var customers []struct {
		ID           int64
		CustomerCode string
	}
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_code FROM customers`,
	).Scan(&customers).Error
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("load customers: %w", err)
	}
	for _, c := range customers {
		snap.CustomerByCode[c.CustomerCode] = c.ID
	}

	var stores []struct {
		ID        int64
		StoreCode string
	}
	err = db.WithContext(ctx).Raw(
		`SELECT id, store_code FROM stores`,
	).Scan(&stores).Error
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("load stores: %w", err)
	}
	for _, s := range stores {
		snap.StoreByCode[s.StoreCode] = s.ID
	}

	return snap, nil
}
