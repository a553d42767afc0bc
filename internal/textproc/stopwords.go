package textproc

// French stopword list, kept static so normalization needs no runtime
// resources. Matched after lowercasing (and after diacritic stripping when
// that stage is enabled).
var frenchStopwords = []string{
	"au", "aux", "avec", "ce", "ces", "dans", "de", "des", "du", "elle", "en",
	"et", "eux", "il", "ils", "je", "la", "le", "les", "leur", "lui", "ma",
	"mais", "me", "même", "mes", "moi", "mon", "ne", "nos", "notre", "nous",
	"on", "ou", "par", "pas", "pour", "qu", "que", "qui", "sa", "se", "ses",
	"son", "sur", "ta", "te", "tes", "toi", "ton", "tu", "un", "une", "vos",
	"votre", "vous", "c", "d", "j", "l", "m", "n", "s", "t", "y", "été",
	"étée", "étées", "étés", "étant", "suis", "es", "est", "sommes", "êtes",
	"sont", "serai", "seras", "sera", "serons", "serez", "seront", "serais",
	"serait", "serions", "seriez", "seraient", "étais", "était", "étions",
	"étiez", "étaient", "fus", "fut", "fûmes", "fûtes", "furent", "sois",
	"soit", "soyons", "soyez", "soient", "fusse", "fusses", "fût", "fussions",
	"fussiez", "fussent", "ayant", "eu", "eue", "eues", "eus", "ai", "as",
	"avons", "avez", "ont", "aurai", "auras", "aura", "aurons", "aurez",
	"auront", "aurais", "aurait", "aurions", "auriez", "auraient", "avais",
	"avait", "avions", "aviez", "avaient", "eut", "eûmes", "eûtes", "eurent",
	"aie", "aies", "ait", "ayons", "ayez", "aient", "eusse", "eusses", "eût",
	"eussions", "eussiez", "eussent", "ceci", "cela", "celà", "cet", "cette",
	"ici", "là", "leurs", "quel", "quels", "quelle", "quelles", "sans", "soi",
	"donc", "or", "ni", "car", "alors", "ainsi", "après", "avant", "bien",
	"comme", "comment", "encore", "entre", "faire", "fait", "fois", "gens",
	"grand", "moins", "non", "oui", "parce", "plus", "pourquoi", "quand",
	"rien", "si", "tous", "tout", "toute", "toutes", "très", "trop", "être",
	"avoir", "aussi", "autres", "autre", "chaque", "déjà", "depuis", "deux",
	"hors", "mêmes", "peu", "peut", "plupart", "premier", "près", "quoi",
	"sous", "tandis", "tel", "telle", "tels", "telles", "vu",
}
