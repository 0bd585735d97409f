package gamedata

// rankedSpecies lists species strongest first; the index is the multi-hot slot.
var rankedSpecies = []string{
	"alakazam", "dragonite", "zapdos", "articuno", "gengar",
	"snorlax", "lapras", "jolteon", "exeggutor", "rhydon",
	"charizard", "starmie", "cloyster", "chansey", "victreebel",
	"slowbro", "persian", "jynx", "golem", "tauros",
}

var speciesRank = func() map[string]int {
	m := make(map[string]int, len(rankedSpecies))
	for i, n := range rankedSpecies {
		m[n] = i
	}
	return m
}()

// RankedSpecies returns a copy of the species in strength-ranking order.
func RankedSpecies() []string {
	out := make([]string, len(rankedSpecies))
	copy(out, rankedSpecies)
	return out
}

// EncodeSeen returns a multi-hot vector over RankedSpecies for the given
// names. Unranked names are ignored.
func EncodeSeen(names []string) []float64 {
	vec := make([]float64, len(rankedSpecies))
	for _, n := range names {
		if i, ok := speciesRank[NormalizeName(n)]; ok {
			vec[i] = 1
		}
	}
	return vec
}
