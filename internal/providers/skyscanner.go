package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tobikareem/desola-flights/internal/models"
)

const (
	skyscannerName       = "skyscanner"
	skyscannerTimeLayout = "2006-01-02T15:04:05"
)

type skyscannerResponse struct {
	Data skyscannerData `json:"data"`
}

type skyscannerData struct {
	Itineraries []skyscannerItinerary `json:"itineraries"`
}

type skyscannerItinerary struct {
	// ID is a composite of the leg ids joined with "|"; the first token is
	// the outbound leg, the second the return leg.
	ID            string              `json:"id"`
	Price         skyscannerPrice     `json:"price"`
	Legs          []skyscannerLeg     `json:"legs"`
	FarePolicy    skyscannerPolicy    `json:"farePolicy"`
	FareAttribute skyscannerAttribute `json:"fareAttributes"`
}

type skyscannerPrice struct {
	Raw       float64 `json:"raw"`
	Formatted string  `json:"formatted"`
}

type skyscannerPolicy struct {
	IsChangeAllowed       bool `json:"isChangeAllowed"`
	IsCancellationAllowed bool `json:"isCancellationAllowed"`
}

type skyscannerAttribute struct {
	CabinBagsIncluded    int `json:"cabinBags"`
	CheckedBagsIncluded  int `json:"checkedBags"`
	SeatsRemainingOnFare int `json:"seatsRemaining"`
}

type skyscannerLeg struct {
	ID                string              `json:"id"`
	Origin            skyscannerPlace     `json:"origin"`
	Destination       skyscannerPlace     `json:"destination"`
	Departure         string              `json:"departure"`
	Arrival           string              `json:"arrival"`
	DurationInMinutes int                 `json:"durationInMinutes"`
	StopCount         int                 `json:"stopCount"`
	Carriers          skyscannerCarriers  `json:"carriers"`
	Segments          []skyscannerSegment `json:"segments"`
}

type skyscannerPlace struct {
	DisplayCode string `json:"displayCode"`
	Name        string `json:"name"`
}

type skyscannerCarriers struct {
	Marketing []skyscannerCarrier `json:"marketing"`
	Operating []skyscannerCarrier `json:"operating"`
}

type skyscannerCarrier struct {
	AlternateID string `json:"alternateId"`
	Name        string `json:"name"`
	LogoURL     string `json:"logoUrl"`
}

type skyscannerSegment struct {
	Origin            skyscannerPlace   `json:"origin"`
	Destination       skyscannerPlace   `json:"destination"`
	Departure         string            `json:"departure"`
	Arrival           string            `json:"arrival"`
	DurationInMinutes int               `json:"durationInMinutes"`
	FlightNumber      string            `json:"flightNumber"`
	MarketingCarrier  skyscannerCarrier `json:"marketingCarrier"`
	OperatingCarrier  skyscannerCarrier `json:"operatingCarrier"`
}

type skyscannerError struct {
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// SkyscannerProvider talks to the Skyscanner search API behind a static
// API-key/host header pair.
type SkyscannerProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	apiHost string
	raw     RawSink
	logos   LogoSink
}

type SkyscannerConfig struct {
	BaseURL string
	APIKey  string
	APIHost string
	Client  *http.Client
	Raw     RawSink
	Logos   LogoSink
}

func NewSkyscannerProvider(cfg SkyscannerConfig) *SkyscannerProvider {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &SkyscannerProvider{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		apiHost: cfg.APIHost,
		raw:     cfg.Raw,
		logos:   cfg.Logos,
	}
}

func (p *SkyscannerProvider) Name() string {
	return skyscannerName
}

func (p *SkyscannerProvider) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/flights/search", nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = p.buildQuery(query).Encode()
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", p.apiHost)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: skyscannerName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Provider: skyscannerName, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.translateError(resp.StatusCode, body)
	}

	var native skyscannerResponse
	if err := json.Unmarshal(body, &native); err != nil {
		return nil, &ResponseFormatError{Provider: skyscannerName, Err: err}
	}

	if p.raw != nil {
		p.raw.StoreRaw(skyscannerName+":raw:"+strings.ToUpper(query.Origin)+":"+strings.ToUpper(query.Destination), body)
	}

	return p.normalize(native, query), nil
}

func (p *SkyscannerProvider) buildQuery(query models.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("origin", strings.ToUpper(query.Origin))
	v.Set("destination", strings.ToUpper(query.Destination))
	v.Set("date", query.DepartureDate)
	if query.ReturnDate != "" {
		v.Set("returnDate", query.ReturnDate)
	}
	v.Set("adults", strconv.Itoa(query.Adults))
	if query.Children > 0 {
		v.Set("children", strconv.Itoa(query.Children))
	}
	if query.Infants > 0 {
		v.Set("infants", strconv.Itoa(query.Infants))
	}
	v.Set("cabinClass", strings.ToLower(query.CabinClass))
	v.Set("currency", strings.ToUpper(query.Currency))
	return v
}

func (p *SkyscannerProvider) translateError(status int, body []byte) error {
	var native skyscannerError
	if err := json.Unmarshal(body, &native); err == nil && (native.Message != "" || len(native.Errors) > 0) {
		detail := native.Message
		if detail == "" {
			detail = strings.Join(native.Errors, "; ")
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return &AuthenticationError{Provider: skyscannerName, Detail: detail}
		}
		return &APIError{Provider: skyscannerName, StatusCode: status, Title: http.StatusText(status), Detail: detail}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthenticationError{Provider: skyscannerName, Detail: http.StatusText(status)}
	case http.StatusNotFound:
		return &ResourceNotFoundError{Provider: skyscannerName, Resource: "flights/search"}
	default:
		return &APIError{Provider: skyscannerName, StatusCode: status, Title: http.StatusText(status)}
	}
}

func (p *SkyscannerProvider) normalize(native skyscannerResponse, query models.SearchQuery) *models.SearchResponse {
	offers := make([]models.Offer, 0, len(native.Data.Itineraries))
	for _, it := range native.Data.Itineraries {
		offers = append(offers, p.normalizeItinerary(it, query))
	}

	return &models.SearchResponse{
		Currency: strings.ToUpper(query.Currency),
		Total:    len(offers),
		Offers:   offers,
	}
}

func (p *SkyscannerProvider) normalizeItinerary(it skyscannerItinerary, query models.SearchQuery) models.Offer {
	// Leg order in the payload is not guaranteed; the itinerary's composite
	// id carries the leg ids in positional order, so legs are matched
	// against its tokens to decide outbound vs return.
	legIDs := strings.Split(it.ID, "|")

	itineraries := make([]models.Itinerary, 0, len(it.Legs))
	for _, leg := range it.Legs {
		direction := models.DirectionOutbound
		for idx, id := range legIDs {
			if id == leg.ID && idx == 1 {
				direction = models.DirectionReturn
			}
		}
		itineraries = append(itineraries, p.normalizeLeg(leg, direction, query.CabinClass))
	}

	p.harvestLogos(it.Legs)

	conditions := make([]string, 0, 2)
	if it.FarePolicy.IsChangeAllowed {
		conditions = append(conditions, "Changes allowed")
	}
	if it.FarePolicy.IsCancellationAllowed {
		conditions = append(conditions, "Cancellation allowed")
	}
	if len(conditions) == 0 {
		conditions = defaultFareConditions
	}

	baggage := models.Baggage{CabinKg: 7, CheckedKg: 23}
	if it.FareAttribute.CabinBagsIncluded > 0 || it.FareAttribute.CheckedBagsIncluded > 0 {
		baggage.CabinKg = float64(it.FareAttribute.CabinBagsIncluded) * 7
		baggage.CheckedKg = float64(it.FareAttribute.CheckedBagsIncluded) * 23
	}

	id := it.ID
	if id == "" {
		id = uuid.NewString()
	}

	validating := ""
	if len(it.Legs) > 0 && len(it.Legs[0].Carriers.Marketing) > 0 {
		validating = it.Legs[0].Carriers.Marketing[0].AlternateID
	}

	return models.Offer{
		ID:                skyscannerName + "-" + id,
		Provider:          skyscannerName,
		Price:             models.Price{Amount: it.Price.Raw, Currency: strings.ToUpper(query.Currency), Formatted: it.Price.Formatted},
		Itineraries:       itineraries,
		Baggage:           baggage,
		Refundable:        it.FarePolicy.IsCancellationAllowed,
		AvailableSeats:    it.FareAttribute.SeatsRemainingOnFare,
		ValidatingCarrier: validating,
		FareConditions:    conditions,
	}
}

func (p *SkyscannerProvider) normalizeLeg(leg skyscannerLeg, direction, cabinClass string) models.Itinerary {
	segments := make([]models.Segment, 0, len(leg.Segments))
	for _, s := range leg.Segments {
		operating := s.OperatingCarrier
		if operating.AlternateID == "" {
			operating = s.MarketingCarrier
		}
		segments = append(segments, models.Segment{
			Departure:        skyscannerPoint(s.Origin, s.Departure),
			Arrival:          skyscannerPoint(s.Destination, s.Arrival),
			DurationMinutes:  s.DurationInMinutes,
			MarketingAirline: models.Airline{Code: s.MarketingCarrier.AlternateID, Name: s.MarketingCarrier.Name},
			OperatingAirline: models.Airline{Code: operating.AlternateID, Name: operating.Name},
			FlightNumber:     s.MarketingCarrier.AlternateID + s.FlightNumber,
			CabinClass:       strings.ToLower(cabinClass),
		})
	}

	return models.Itinerary{
		Direction:       direction,
		DurationMinutes: leg.DurationInMinutes,
		Stops:           leg.StopCount,
		Segments:        segments,
	}
}

// harvestLogos feeds carrier logo URLs into the shared index. Segments
// themselves are left without logos; repair happens downstream.
func (p *SkyscannerProvider) harvestLogos(legs []skyscannerLeg) {
	if p.logos == nil {
		return
	}
	for _, leg := range legs {
		for _, c := range leg.Carriers.Marketing {
			if c.AlternateID != "" && c.LogoURL != "" {
				p.logos.Set(c.AlternateID, c.LogoURL)
			}
		}
	}
}

func skyscannerPoint(place skyscannerPlace, ts string) models.SegmentPoint {
	t, _ := time.Parse(skyscannerTimeLayout, ts)
	return models.SegmentPoint{Airport: place.DisplayCode, Time: t}
}
