package bm25

// Stats summarizes the indexed corpus.
type Stats struct {
	Documents      int     `json:"documents"`
	AvgDocLength   float64 `json:"avg_doc_length"`
	VocabularySize int     `json:"vocabulary_size"`
	MinDocLength   int     `json:"min_doc_length"`
	MaxDocLength   int     `json:"max_doc_length"`
	K1             float64 `json:"k1"`
	B              float64 `json:"b"`
}

// Stats returns corpus-wide statistics of the snapshot.
func (ix *Index) Stats() Stats {
	s := Stats{
		Documents:      ix.n,
		AvgDocLength:   ix.avgdl,
		VocabularySize: len(ix.docFreq),
		K1:             ix.params.K1,
		B:              ix.params.B,
	}
	for i, l := range ix.docLens {
		if i == 0 || l < s.MinDocLength {
			s.MinDocLength = l
		}
		if l > s.MaxDocLength {
			s.MaxDocLength = l
		}
	}
	return s
}

// MatchStats describes how well a tokenized query overlaps the corpus
// vocabulary. Useful for diagnosing queries that score zero everywhere.
type MatchStats struct {
	QueryTerms     int      `json:"query_terms"`
	MatchedTerms   int      `json:"matched_terms"`
	MatchRate      float64  `json:"match_rate"`
	MatchedList    []string `json:"matched_terms_list,omitempty"`
	UnmatchedList  []string `json:"unmatched_terms_list,omitempty"`
	MeanMatchedIDF float64  `json:"mean_matched_idf"`
}

// MatchStats computes the vocabulary overlap of the given query tokens.
func (ix *Index) MatchStats(query []string) MatchStats {
	ms := MatchStats{QueryTerms: len(query)}
	if len(query) == 0 {
		return ms
	}

	idfSum := 0.0
	for _, term := range query {
		if idf, ok := ix.idf[term]; ok {
			ms.MatchedList = append(ms.MatchedList, term)
			idfSum += idf
		} else {
			ms.UnmatchedList = append(ms.UnmatchedList, term)
		}
	}
	ms.MatchedTerms = len(ms.MatchedList)
	ms.MatchRate = float64(ms.MatchedTerms) / float64(ms.QueryTerms)
	if ms.MatchedTerms > 0 {
		ms.MeanMatchedIDF = idfSum / float64(ms.MatchedTerms)
	}
	return ms
}
