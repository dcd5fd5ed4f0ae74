package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photo-watermark/internal/domain"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/usecase"
)

func ptrString(s string) *string { return &s }

func fullMetadata() *domain.PhotoMetadata {
	return &domain.PhotoMetadata{
		CaptureTime: "2024-01-15 14:30:00",
		GPS:         &domain.GPS{Lat: 39.9042, Lng: 116.4074},
		CameraMake:  "Canon",
		Width:       4000,
		Height:      3000,
	}
}

func TestLineAssembler_BuildLines(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	path := "/photos/IMG_0001.jpg"

	t.Run("all lines in fixed order", func(t *testing.T) {
		meta := &MockMetadataReader{}
		resolver := &MockAddressResolver{}
		meta.On("Extract", path).Return(fullMetadata(), nil)
		resolver.On("ReverseGeocode", ctx, mock.MatchedBy(func(req domain.GeocodeRequest) bool {
			return req.Lat == 39.9042 && req.Provider == domain.ProviderAuto && req.Granularity == domain.GranularityDistrict
		})).Return("北京市东城区", nil)

		a := usecase.NewLineAssembler(meta, resolver, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowDateTime:   true,
			ShowLocation:   true,
			LocationLevel:  domain.GranularityDistrict,
			ShowChildAge:   true,
			ChildBirthday:  "2023-06-01",
			ChildAgePrefix: "宝宝",
			CustomText:     "Family trip",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{
			"2024-01-15 14:30",
			"📍 北京市东城区",
			"宝宝 7个月",
			"Family trip",
		}, res.Lines)
		assert.Equal(t, "Canon", res.Metadata.CameraMake)
		meta.AssertExpectations(t)
		resolver.AssertExpectations(t)
	})

	t.Run("missing metadata drops lines", func(t *testing.T) {
		meta := &MockMetadataReader{}
		resolver := &MockAddressResolver{}
		meta.On("Extract", path).Return(&domain.PhotoMetadata{}, nil)

		a := usecase.NewLineAssembler(meta, resolver, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowDateTime:  true,
			ShowLocation:  true,
			ShowChildAge:  true,
			ChildBirthday: "2023-06-01",
		})

		require.NoError(t, err)
		assert.Empty(t, res.Lines)
		resolver.AssertNotCalled(t, "ReverseGeocode", mock.Anything, mock.Anything)
	})

	t.Run("custom date format", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(fullMetadata(), nil)

		a := usecase.NewLineAssembler(meta, nil, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowDateTime:   true,
			DateTimeFormat: "YYYY年M月D日",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"2024年1月15日"}, res.Lines)
	})

	t.Run("coords mode", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(fullMetadata(), nil)

		a := usecase.NewLineAssembler(meta, &MockAddressResolver{}, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowLocation: true,
			LocationMode: domain.LocationCoords,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"📍 39.904200, 116.407400"}, res.Lines)
	})

	t.Run("custom mode with gps prefers custom text", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(fullMetadata(), nil)

		a := usecase.NewLineAssembler(meta, &MockAddressResolver{}, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowLocation:   true,
			LocationMode:   domain.LocationCustom,
			CustomLocation: "Home",
			LocationPrefix: ptrString("@"),
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"@ Home"}, res.Lines)
	})

	t.Run("custom mode with gps and no text falls back to coords", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(fullMetadata(), nil)

		a := usecase.NewLineAssembler(meta, &MockAddressResolver{}, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowLocation:   true,
			LocationMode:   domain.LocationCustom,
			LocationPrefix: ptrString(""),
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"39.904200, 116.407400"}, res.Lines)
	})

	t.Run("custom mode without gps", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(&domain.PhotoMetadata{}, nil)

		a := usecase.NewLineAssembler(meta, &MockAddressResolver{}, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowLocation:   true,
			LocationMode:   domain.LocationCustom,
			CustomLocation: "West Lake",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"📍 West Lake"}, res.Lines)
	})

	t.Run("geocoding error degrades to no location line", func(t *testing.T) {
		meta := &MockMetadataReader{}
		resolver := &MockAddressResolver{}
		meta.On("Extract", path).Return(fullMetadata(), nil)
		resolver.On("ReverseGeocode", ctx, mock.Anything).Return("", errors.New("高德地图: INVALID_USER_KEY"))

		a := usecase.NewLineAssembler(meta, resolver, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowDateTime: true,
			ShowLocation: true,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-15 14:30"}, res.Lines)
	})

	t.Run("empty address gives no location line", func(t *testing.T) {
		meta := &MockMetadataReader{}
		resolver := &MockAddressResolver{}
		meta.On("Extract", path).Return(fullMetadata(), nil)
		resolver.On("ReverseGeocode", ctx, mock.Anything).Return("", nil)

		a := usecase.NewLineAssembler(meta, resolver, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{ShowLocation: true})

		require.NoError(t, err)
		assert.Empty(t, res.Lines)
	})

	t.Run("age in english without prefix", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(fullMetadata(), nil)

		a := usecase.NewLineAssembler(meta, nil, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowChildAge:   true,
			ChildBirthday:  "2022-12-01",
			ChildAgeFormat: domain.AgeYearsMonthsDays,
			Lang:           "en",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"1 year 1 month 14 days"}, res.Lines)
	})

	t.Run("birthday after capture drops the age line", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(fullMetadata(), nil)

		a := usecase.NewLineAssembler(meta, nil, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{
			ShowChildAge:  true,
			ChildBirthday: "2025-01-01",
		})

		require.NoError(t, err)
		assert.Empty(t, res.Lines)
	})

	t.Run("unreadable file is an error", func(t *testing.T) {
		meta := &MockMetadataReader{}
		meta.On("Extract", path).Return(nil, apperrors.ErrInvalidFilePath)

		a := usecase.NewLineAssembler(meta, nil, logger)
		res, err := a.BuildLines(ctx, path, domain.LineOptions{ShowDateTime: true})

		assert.Nil(t, res)
		assert.ErrorIs(t, err, apperrors.ErrInvalidFilePath)
	})
}
