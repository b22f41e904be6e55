// Package lexicon holds the vocabularies the deterministic scorers
// match against. The exact word lists are tuning material, not
// contract; they are kept here so swapping them never touches scoring
// arithmetic.
package lexicon

// Marketing terms signal promotional vocabulary.
var Marketing = []string{
	"revolutionary",
	"game-changing",
	"game changer",
	"groundbreaking",
	"cutting-edge",
	"next-generation",
	"world-class",
	"best-in-class",
	"disrupt",
	"transformative",
	"visionary",
	"seamless",
	"synergy",
	"unicorn",
	"paradigm shift",
	"unprecedented",
	"state-of-the-art",
}

// Superlatives signal exaggerated comparison.
var Superlatives = []string{
	"best",
	"biggest",
	"fastest",
	"greatest",
	"smartest",
	"first-ever",
	"first ever",
	"most advanced",
	"most powerful",
	"ultimate",
	"unmatched",
	"unrivaled",
	"perfect",
	"amazing",
	"incredible",
	"mind-blowing",
}

// Breakthrough terms signal sweeping claims of novelty.
var Breakthrough = []string{
	"breakthrough",
	"change everything",
	"changes everything",
	"will change the world",
	"never been done",
	"never before",
	"world first",
	"world's first",
	"holy grail",
	"revolutionize",
	"10x",
	"100x",
	"leapfrog",
}

// Technical terms ground a story in substance; they offset marketing
// vocabulary in the hype ratio signal.
var Technical = []string{
	"algorithm",
	"latency",
	"throughput",
	"benchmark",
	"architecture",
	"protocol",
	"dataset",
	"inference",
	"training",
	"compiler",
	"kernel",
	"optimization",
	"evaluation",
	"regression",
	"peer-reviewed",
	"peer reviewed",
	"open source",
	"open-source",
	"statistical",
	"reproducib",
	"methodology",
	"analysis",
	"implementation",
	"technical",
}

// RedFlags are hard-gate patterns checked independently of the numeric
// ethics score.
var RedFlags = []string{
	"sold user data",
	"selling user data",
	"without consent",
	"without user consent",
	"undisclosed data sale",
	"secretly track",
	"covert surveillance",
	"covertly collect",
	"wage theft",
	"union busting",
	"union-busting",
	"child labor",
	"falsified safety",
	"suppressed safety report",
	"bribery",
}
