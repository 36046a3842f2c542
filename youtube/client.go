// Package youtube fetches caption tracks straight from YouTube's watch pages.
package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/captions"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL   = "https://www.youtube.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	// Language is the only caption language requested.
	Language = "en"

	maxBodySize = 16 << 20
)

var consentValueRe = regexp.MustCompile(`name="v" value="(.*?)"`)

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client implements captions.Source.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     logrus.FieldLogger
}

func NewClient(cfg Config, logger logrus.FieldLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
	Name         struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

func (t captionTrack) generated() bool {
	return t.Kind == "asr"
}

type captionsData struct {
	PlayerCaptionsTracklistRenderer struct {
		CaptionTracks []captionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

func (c *Client) FetchCaptions(ctx context.Context, videoID string) ([]captions.Segment, error) {
	logger := c.logger.WithField("video_id", videoID)

	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks, err := extractTracks(videoID, page)
	if err != nil {
		return nil, err
	}
	logger.WithField("tracks", len(tracks)).Debug("Caption tracks found")

	track, ok := selectTrack(tracks, Language)
	if !ok {
		return nil, errors.Wrapf(captions.ErrNotFound, "no %s track among %s", Language, languageCodes(tracks))
	}
	logger.WithFields(logrus.Fields{
		"language":  track.LanguageCode,
		"generated": track.generated(),
	}).Debug("Caption track selected")

	body, err := c.get(ctx, strings.Replace(track.BaseURL, "&fmt=srv3", "", 1), "")
	if err != nil {
		return nil, captions.NewRetrievalError(videoID, "failed to download caption track", err)
	}

	segments, err := parseTimedText(body)
	if err != nil {
		return nil, captions.NewRetrievalError(videoID, "failed to parse caption track", err)
	}
	return segments, nil
}

func (c *Client) fetchWatchPage(ctx context.Context, videoID string) (string, error) {
	watchURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	body, err := c.get(ctx, watchURL, "")
	if err != nil {
		return "", captions.NewRetrievalError(videoID, "failed to load video page", err)
	}
	page := string(body)

	if !strings.Contains(page, `action="https://consent.youtube.com/s"`) {
		return page, nil
	}

	match := consentValueRe.FindStringSubmatch(page)
	if match == nil {
		return "", captions.NewRetrievalError(videoID, "failed to create consent cookie", nil)
	}
	body, err = c.get(ctx, watchURL, "CONSENT=YES+"+match[1])
	if err != nil {
		return "", captions.NewRetrievalError(videoID, "failed to load video page", err)
	}
	page = string(body)
	if strings.Contains(page, `action="https://consent.youtube.com/s"`) {
		return "", captions.NewRetrievalError(videoID, "consent cookie was not accepted", nil)
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, rawURL, cookie string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.Errorf("too many requests (status %d)", resp.StatusCode)
		}
		return nil, errors.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return body, nil
}

func extractTracks(videoID, page string) ([]captionTrack, error) {
	_, rest, found := strings.Cut(page, `"captions":`)
	if !found {
		if strings.Contains(page, `class="g-recaptcha"`) {
			return nil, captions.NewRetrievalError(videoID, "YouTube is receiving too many requests from this IP and now requires solving a captcha", nil)
		}
		if !strings.Contains(page, `"playabilityStatus":`) {
			return nil, captions.NewRetrievalError(videoID, "the video is no longer available", nil)
		}
		return nil, captions.ErrDisabled
	}

	raw, _, found := strings.Cut(rest, `,"videoDetails`)
	if !found {
		return nil, captions.NewRetrievalError(videoID, "malformed captions data", nil)
	}

	var data captionsData
	if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "\n", "")), &data); err != nil {
		return nil, captions.NewRetrievalError(videoID, "malformed captions data", err)
	}

	tracks := data.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, captions.ErrDisabled
	}
	return tracks, nil
}

// selectTrack prefers a manually created track over a generated one.
func selectTrack(tracks []captionTrack, language string) (captionTrack, bool) {
	var generated *captionTrack
	for i := range tracks {
		if tracks[i].LanguageCode != language {
			continue
		}
		if !tracks[i].generated() {
			return tracks[i], true
		}
		if generated == nil {
			generated = &tracks[i]
		}
	}
	if generated != nil {
		return *generated, true
	}
	return captionTrack{}, false
}

func languageCodes(tracks []captionTrack) string {
	codes := make([]string, 0, len(tracks))
	for _, t := range tracks {
		codes = append(codes, t.LanguageCode)
	}
	return "[" + strings.Join(codes, ", ") + "]"
}

func parseTimedText(body []byte) ([]captions.Segment, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding timed text")
	}

	segments := make([]captions.Segment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := utils.CleanCaptionText(t.Body)
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		segments = append(segments, captions.Segment{
			Text:     text,
			Start:    start,
			Duration: dur,
		})
	}
	return segments, nil
}
