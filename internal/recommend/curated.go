package recommend

import (
	"context"
	"strings"

	"github.com/desertthunder/moodify/internal/models"
)

type curatedList struct {
	keywords []string
	genres   []string
	songs    []models.Song
}

var curatedLists = []curatedList{
	{
		keywords: []string{"happy", "energetic", "joy"},
		genres:   []string{"pop", "funk", "dance"},
		songs: []models.Song{
			{Title: "Good as Hell", Artist: "Lizzo"},
			{Title: "Walking on Sunshine", Artist: "Katrina & The Waves"},
			{Title: "Can't Stop the Feeling!", Artist: "Justin Timberlake"},
			{Title: "Happy", Artist: "Pharrell Williams"},
			{Title: "Uptown Funk", Artist: "Mark Ronson ft. Bruno Mars"},
			{Title: "Don't Stop Me Now", Artist: "Queen"},
			{Title: "Juice", Artist: "Lizzo"},
			{Title: "Levitating", Artist: "Dua Lipa"},
			{Title: "Good Feeling", Artist: "Flo Rida"},
			{Title: "I Gotta Feeling", Artist: "Black Eyed Peas"},
		},
	},
	{
		keywords: []string{"sad", "melancholic", "blue"},
		genres:   []string{"singer-songwriter", "indie folk", "soul"},
		songs: []models.Song{
			{Title: "Someone Like You", Artist: "Adele"},
			{Title: "Fix You", Artist: "Coldplay"},
			{Title: "Skinny Love", Artist: "Bon Iver"},
			{Title: "Hurt", Artist: "Johnny Cash"},
			{Title: "All Too Well", Artist: "Taylor Swift"},
			{Title: "Say Something", Artist: "A Great Big World & Christina Aguilera"},
			{Title: "Tears In Heaven", Artist: "Eric Clapton"},
			{Title: "Nothing Compares 2 U", Artist: "Sinéad O'Connor"},
			{Title: "Everybody Hurts", Artist: "R.E.M."},
			{Title: "Hallelujah", Artist: "Jeff Buckley"},
		},
	},
	{
		keywords: []string{"calm", "relax", "chill"},
		genres:   []string{"ambient", "classical", "dream pop"},
		songs: []models.Song{
			{Title: "Weightless", Artist: "Marconi Union"},
			{Title: "Claire de Lune", Artist: "Claude Debussy"},
			{Title: "Gymnopédie No.1", Artist: "Erik Satie"},
			{Title: "Watermark", Artist: "Enya"},
			{Title: "Intro", Artist: "The xx"},
			{Title: "Ocean Eyes", Artist: "Billie Eilish"},
			{Title: "Flightless Bird, American Mouth", Artist: "Iron & Wine"},
			{Title: "Holocene", Artist: "Bon Iver"},
			{Title: "Saturn", Artist: "Sleeping At Last"},
			{Title: "Breathe", Artist: "Télépopmusik"},
		},
	},
	{
		keywords: []string{"focus", "productive", "work"},
		genres:   []string{"modern classical", "post-rock", "electronic"},
		songs: []models.Song{
			{Title: "Experience", Artist: "Ludovico Einaudi"},
			{Title: "Time", Artist: "Hans Zimmer"},
			{Title: "Divenire", Artist: "Ludovico Einaudi"},
			{Title: "Arrival of the Birds", Artist: "The Cinematic Orchestra"},
			{Title: "On The Nature Of Daylight", Artist: "Max Richter"},
			{Title: "Nuvole Bianche", Artist: "Ludovico Einaudi"},
			{Title: "Comptine d'un autre été", Artist: "Yann Tiersen"},
			{Title: "Your Hand in Mine", Artist: "Explosions in the Sky"},
			{Title: "Strobe", Artist: "deadmau5"},
			{Title: "I Giorni", Artist: "Ludovico Einaudi"},
		},
	},
}

var defaultList = curatedList{
	genres: []string{"pop", "rock", "indie"},
	songs: []models.Song{
		{Title: "Blinding Lights", Artist: "The Weeknd"},
		{Title: "Dreams", Artist: "Fleetwood Mac"},
		{Title: "Heat Waves", Artist: "Glass Animals"},
		{Title: "Despacito", Artist: "Luis Fonsi ft. Daddy Yankee"},
		{Title: "Dance Monkey", Artist: "Tones and I"},
		{Title: "Bohemian Rhapsody", Artist: "Queen"},
		{Title: "Shape of You", Artist: "Ed Sheeran"},
		{Title: "Take on Me", Artist: "a-ha"},
		{Title: "Bad Guy", Artist: "Billie Eilish"},
		{Title: "Africa", Artist: "Toto"},
	},
}

// CuratedProvider answers from fixed per-mood lists. The genre does not change the list.
type CuratedProvider struct{}

// NewCuratedProvider creates a [CuratedProvider].
func NewCuratedProvider() *CuratedProvider {
	return &CuratedProvider{}
}

func (p *CuratedProvider) Name() string { return "curated" }

// Recommend implements [Provider].
func (p *CuratedProvider) Recommend(_ context.Context, req Request) ([]models.Song, error) {
	return append([]models.Song(nil), match(req.Mood).songs...), nil
}

// SuggestGenres implements [GenreSuggester] from the mood alone.
func (p *CuratedProvider) SuggestGenres(_ context.Context, _ []models.Song, mood string) ([]string, error) {
	return append([]string(nil), match(mood).genres...), nil
}

func match(mood string) curatedList {
	m := strings.ToLower(mood)
	for _, list := range curatedLists {
		for _, kw := range list.keywords {
			if strings.Contains(m, kw) {
				return list
			}
		}
	}
	return defaultList
}
