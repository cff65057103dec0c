package offline

import (
	"math"

	"github.com/cwbudde/algo-hifi/analysis"
)

// MinGenreScore is the best weighted score below which the genre is
// reported as unknown.
const MinGenreScore = 0.55

// Profile is the set of features the scoring matrix compares.
type Profile struct {
	BPM           float64
	Centroid      float64
	BassRatio     float64
	VocalPresence float64
	Flatness      float64
	CrestFactorDB float64
	RangeLU       float64
}

type feature int

const (
	featBPM feature = iota
	featCentroid
	featBass
	featVocal
	featFlatness
	featCrest
	featRange
	numFeatures
)

func (p Profile) vector() [numFeatures]float64 {
	return [numFeatures]float64{
		p.BPM, p.Centroid, p.BassRatio, p.VocalPresence, p.Flatness, p.CrestFactorDB, p.RangeLU,
	}
}

// Tolerance of each feature: the distance from target at which its
// similarity falls to exp(-1/2).
var featureWidth = [numFeatures]float64{20, 700, 0.05, 0.2, 0.12, 3, 4}

type genreTarget struct {
	genre  analysis.Genre
	target [numFeatures]float64
	weight [numFeatures]float64
}

// Rows: BPM, centroid Hz, bass ratio, vocal presence, flatness, crest dB, LRA.
var scoringMatrix = []genreTarget{
	{analysis.GenreElectronic, [numFeatures]float64{128, 2500, 0.42, 0.40, 0.35, 9, 5}, [numFeatures]float64{3, 1, 2, 0.5, 1.5, 1, 1}},
	{analysis.GenreHipHop, [numFeatures]float64{90, 1800, 0.42, 0.65, 0.25, 11, 6}, [numFeatures]float64{3, 1, 2, 1.5, 1, 1, 0.5}},
	{analysis.GenreRock, [numFeatures]float64{120, 2800, 0.35, 0.55, 0.30, 10, 7}, [numFeatures]float64{1.5, 1.5, 1, 1, 1.5, 1, 1}},
	{analysis.GenreClassical, [numFeatures]float64{90, 1500, 0.30, 0.35, 0.10, 18, 15}, [numFeatures]float64{0.5, 1, 1, 1, 1.5, 2, 3}},
	{analysis.GenreJazz, [numFeatures]float64{110, 1800, 0.33, 0.50, 0.15, 15, 10}, [numFeatures]float64{1, 1, 1, 1, 1, 1.5, 1.5}},
	{analysis.GenreVocal, [numFeatures]float64{100, 2000, 0.30, 0.80, 0.12, 14, 8}, [numFeatures]float64{0.5, 1, 1, 3, 1, 1, 1}},
	{analysis.GenreAcoustic, [numFeatures]float64{100, 1600, 0.31, 0.55, 0.12, 15, 9}, [numFeatures]float64{1, 1.5, 1, 1, 1.5, 1, 1}},
	{analysis.GenrePop, [numFeatures]float64{115, 2200, 0.36, 0.65, 0.25, 10, 6}, [numFeatures]float64{1.5, 1, 1, 1.5, 1, 1, 1}},
}

// Score returns the weighted similarity of p to genre in [0, 1], or 0 for
// a genre outside the matrix.
func Score(p Profile, genre analysis.Genre) float64 {
	for _, row := range scoringMatrix {
		if row.genre == genre {
			return row.score(p.vector())
		}
	}
	return 0
}

func (g genreTarget) score(x [numFeatures]float64) float64 {
	sum, wsum := 0.0, 0.0
	for i := range x {
		d := (x[i] - g.target[i]) / featureWidth[i]
		sum += g.weight[i] * math.Exp(-0.5*d*d)
		wsum += g.weight[i]
	}
	return sum / wsum
}

// ClassifyProfile returns the best-scoring genre and its score. Ties go to
// the earlier matrix row. Scores under MinGenreScore yield GenreUnknown.
func ClassifyProfile(p Profile) (analysis.Genre, float64) {
	x := p.vector()
	best, bestScore := analysis.GenreUnknown, 0.0

	for _, row := range scoringMatrix {
		if s := row.score(x); s > bestScore {
			best, bestScore = row.genre, s
		}
	}

	if bestScore < MinGenreScore {
		return analysis.GenreUnknown, bestScore
	}

	return best, bestScore
}
