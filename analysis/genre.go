package analysis

// Genre is a detected musical genre. Values double as preset table keys.
type Genre string

const (
	GenreUnknown    Genre = "unknown"
	GenreElectronic Genre = "electronic"
	GenreHipHop     Genre = "hiphop"
	GenreRock       Genre = "rock"
	GenreClassical  Genre = "classical"
	GenreJazz       Genre = "jazz"
	GenreVocal      Genre = "vocal"
	GenreAcoustic   Genre = "acoustic"
	GenrePop        Genre = "pop"
)

// Genres lists every known genre except GenreUnknown.
var Genres = []Genre{
	GenreElectronic, GenreHipHop, GenreRock, GenreClassical,
	GenreJazz, GenreVocal, GenreAcoustic, GenrePop,
}

func (g Genre) String() string {
	if g == "" {
		return string(GenreUnknown)
	}
	return string(g)
}

// Classify applies the ordered rule cascade. Earlier rules take precedence.
func Classify(f Features) Genre {
	switch {
	case f.BassRatio > 0.4 && f.TrebleRatio > 0.3:
		return GenreElectronic
	case f.BassRatio > 0.4 && f.VocalPresence > 0.5:
		return GenreHipHop
	case f.BassRatio > 0.3 && f.Bands[4] > -30 && f.Bands[5] > -30:
		return GenreRock
	case f.SpectralVariance < 100 && f.DynamicRange > 20:
		return GenreClassical
	case f.Bands[4] > -25 && f.Bands[5] > -25 && f.VocalPresence > 0.4:
		return GenreJazz
	case f.VocalPresence > 0.6:
		return GenreVocal
	case f.BassRatio < 0.35 && f.TrebleRatio < 0.35:
		return GenreAcoustic
	case f.VocalPresence > 0.3:
		return GenrePop
	default:
		return GenreUnknown
	}
}
