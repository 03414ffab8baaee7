// Package weather fetches current conditions and a short forecast from
// OpenWeather and derives farm alerts from them.
package weather

// Report is the reshaped weather for one resolved location.
type Report struct {
	Current  Current         `json:"current"`
	Forecast []ForecastPoint `json:"forecast"`
	Location Location        `json:"location"`
}

// Current conditions. Temperatures are whole degrees Celsius, visibility is
// in kilometres. Alerts use the unrounded reading, see Celsius.
type Current struct {
	Temperature   int     `json:"temperature"`
	FeelsLike     int     `json:"feels_like"`
	Humidity      int     `json:"humidity"`
	Pressure      int     `json:"pressure"`
	Condition     string  `json:"condition"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	Visibility    float64 `json:"visibility"`
	UVIndex       int     `json:"uv_index"`
	RainChance    float64 `json:"rain_chance"`

	exact *float64
}

// Celsius is the reading at 0.01 °C precision, falling back to Temperature
// when the report was not built from an upstream response.
func (c Current) Celsius() float64 {
	if c.exact != nil {
		return *c.exact
	}
	return float64(c.Temperature)
}

type ForecastPoint struct {
	Datetime    string  `json:"datetime"`
	Temperature int     `json:"temperature"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	RainChance  float64 `json:"rain_chance"`
}

type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// upstream payloads

type geocodeHit struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type currentResponse struct {
	Weather    []condition  `json:"weather"`
	Main       mainReadings `json:"main"`
	Visibility float64      `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Rain *struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		DtTxt   string       `json:"dt_txt"`
		Main    mainReadings `json:"main"`
		Weather []condition  `json:"weather"`
		Pop     float64      `json:"pop"`
	} `json:"list"`
}
