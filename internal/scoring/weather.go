package scoring

import (
	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/weather"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// heavyRainfallMM is the 7-day rainfall above which conditions count
// as heavy rain when elevating risk for rain-loving pests.
const heavyRainfallMM = 20.0

// ProgressionRate estimates how quickly the infestation will spread.
// Both temperature and humidity in the pest's optimal range means fast
// progression (Rapid when pressure is already High/Critical); one of
// the two means Moderate; neither means Slow.
func ProgressionRate(prefs knowledge.WeatherPreferences, obs weather.Observation, severity models.SeverityLevel) models.ProgressionRate {
	tempOptimal := prefs.TempMin <= obs.Temperature && obs.Temperature <= prefs.TempMax
	humidityOptimal := prefs.HumidityMin <= obs.Humidity && obs.Humidity <= prefs.HumidityMax

	switch {
	case tempOptimal && humidityOptimal:
		if severity.IsEmergency() {
			return models.ProgressionRapid
		}
		return models.ProgressionModerate
	case tempOptimal || humidityOptimal:
		return models.ProgressionModerate
	default:
		return models.ProgressionSlow
	}
}

// AssessWeatherRisk evaluates how the observed conditions affect the
// pest. Conditions are favorable when temperature and humidity are
// both in the pest's preferred range; risk is elevated to Very High
// when heavy rainfall additionally coincides with a rain-loving pest.
func AssessWeatherRisk(prefs knowledge.WeatherPreferences, obs weather.Observation) models.WeatherContext {
	tempFavorable := prefs.TempMin <= obs.Temperature && obs.Temperature <= prefs.TempMax
	humidityFavorable := prefs.HumidityMin <= obs.Humidity && obs.Humidity <= prefs.HumidityMax
	favorable := tempFavorable && humidityFavorable

	var riskLevel string
	switch {
	case favorable && obs.Rainfall7Day > heavyRainfallMM && prefs.RainfallPreference == "high":
		riskLevel = "Very High"
	case favorable:
		riskLevel = "High"
	case tempFavorable || humidityFavorable:
		riskLevel = "Moderate"
	default:
		riskLevel = "Low"
	}

	return models.WeatherContext{
		Temperature:      obs.Temperature,
		Humidity:         obs.Humidity,
		Rainfall7Day:     obs.Rainfall7Day,
		WindSpeed:        obs.WindSpeed,
		FavorableForPest: favorable,
		RiskLevel:        riskLevel,
	}
}
