package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adbidder/internal/gateway"
)

// Extension types the platform refuses to copy between groups.
var uncopyableExtensions = map[string]bool{
	"SHOPPING_EXTRA":  true,
	"IMAGE_SUB_LINKS": true,
	"CATALOG_IMAGE":   true,
}

type CopyResult struct {
	AdsCopied        int      `json:"ads_copied"`
	AdsFailed        int      `json:"ads_failed"`
	ExtensionsCopied int      `json:"extensions_copied"`
	ExtensionsFailed int      `json:"extensions_failed"`
	ExtensionsSkip   int      `json:"extensions_skipped"`
	Errors           []string `json:"errors,omitempty"`
}

// copyCreatives replicates ads and extensions from src into dst. Per-item
// failures are logged and counted. A listing failure is recorded and the
// other pass still runs; an error is returned only when both listings fail.
func copyCreatives(ctx context.Context, gw gateway.Gateway, logger *zap.Logger, src, dst gateway.AdGroup) (CopyResult, error) {
	var res CopyResult
	ads, adsErr := gw.FetchAds(ctx, src.ID)
	if adsErr != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("list ads: %v", adsErr))
		logger.Warn("list ads failed", zap.String("source", src.ID), zap.Error(adsErr))
	}
	for _, ad := range ads {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if _, err := gw.CreateAd(ctx, dst.ID, ad); err != nil {
			res.AdsFailed++
			res.Errors = append(res.Errors, fmt.Sprintf("ad %s: %v", ad.ID, err))
			logger.Warn("copy ad failed", zap.String("ad_id", ad.ID), zap.String("target", dst.ID), zap.Error(err))
			continue
		}
		res.AdsCopied++
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	exts, extsErr := gw.FetchExtensions(ctx, src.ID)
	if extsErr != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("list extensions: %v", extsErr))
		logger.Warn("list extensions failed", zap.String("source", src.ID), zap.Error(extsErr))
	}
	for _, ext := range exts {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if uncopyableExtensions[strings.ToUpper(ext.Type)] {
			res.ExtensionsSkip++
			continue
		}
		// channel ids follow the target group when the source used its own
		if ext.PCChannelID == "" || ext.PCChannelID == src.PCChannelID {
			ext.PCChannelID = dst.PCChannelID
		}
		if ext.MobileChannelID == "" || ext.MobileChannelID == src.MobileChannelID {
			ext.MobileChannelID = dst.MobileChannelID
		}
		if _, err := gw.CreateExtension(ctx, dst.ID, ext); err != nil {
			res.ExtensionsFailed++
			res.Errors = append(res.Errors, fmt.Sprintf("extension %s (%s): %v", ext.ID, ext.Type, err))
			logger.Warn("copy extension failed", zap.String("extension_id", ext.ID), zap.String("type", ext.Type), zap.String("target", dst.ID), zap.Error(err))
			continue
		}
		res.ExtensionsCopied++
	}
	if adsErr != nil && extsErr != nil {
		return res, errors.Join(adsErr, extsErr)
	}
	return res, nil
}

// CreativeCloner copies ads and extensions between two existing ad groups.
type CreativeCloner struct {
	Gateway gateway.Gateway
	Logger  *zap.Logger
}

func (c *CreativeCloner) Clone(ctx context.Context, sourceID, targetID string) (CopyResult, error) {
	sourceID, targetID = strings.TrimSpace(sourceID), strings.TrimSpace(targetID)
	if sourceID == "" || targetID == "" {
		return CopyResult{}, fmt.Errorf("%w: source and target ad groups are required", ErrInvalidRequest)
	}
	if sourceID == targetID {
		return CopyResult{}, fmt.Errorf("%w: source and target must differ", ErrInvalidRequest)
	}
	src, err := c.Gateway.FetchAdGroup(ctx, sourceID)
	if err != nil {
		return CopyResult{}, err
	}
	dst, err := c.Gateway.FetchAdGroup(ctx, targetID)
	if err != nil {
		return CopyResult{}, err
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	res, err := copyCreatives(ctx, c.Gateway, logger, *src, *dst)
	if err != nil {
		return res, fmt.Errorf("clone creatives: %w", err)
	}
	logger.Info("creatives cloned",
		zap.String("source", sourceID), zap.String("target", targetID),
		zap.Int("ads", res.AdsCopied), zap.Int("extensions", res.ExtensionsCopied))
	return res, nil
}
