package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/utcompling/textgrounder/corpus"
	"github.com/utcompling/textgrounder/model"
)

var (
	configFile   = flag.String("config", "", "TOML experiment parameter file (optional)")
	tokenArray   = flag.String("token_array", "token-array-input.dat.gz", "token array input file")
	coordLexicon = flag.String("toponym_coordinates", "toponym-coordinate.dat.gz", "toponym coordinate lexicon file")
	tokenOutput  = flag.String("token_array_output", "token-array-output.dat.gz", "resolved token array output file")
	countsOutput = flag.String("averaged_counts", "averaged-counts.dat.gz", "averaged posterior snapshot output file")
	dishes       = flag.Int("l", 0, "truncation level override")
	burnIn       = flag.Int("burnin", 0, "burn-in iterations override")
	sampleTotal  = flag.Int("samples", -1, "posterior sample count override")
	sampleLag    = flag.Int("lag", 0, "iterations between samples override")
	seed         = flag.Int64("seed", -1, "random seed override (0 means time-based)")
)

func main() {
	flag.Parse()

	params := model.DefaultParameters()
	if *configFile != "" {
		var err error
		params, err = model.LoadParameters(*configFile)
		if err != nil {
			glog.Exitf("%v", err)
		}
	}
	if *dishes > 0 {
		params.L = *dishes
	}
	if *burnIn > 0 {
		params.BurnInIterations = *burnIn
	}
	if *sampleTotal >= 0 {
		params.Samples = *sampleTotal
	}
	if *sampleLag > 0 {
		params.Lag = *sampleLag
	}
	if *seed >= 0 {
		params.RandomSeed = *seed
	}

	data, err := corpus.LoadTokenArray(*tokenArray)
	if err != nil {
		glog.Exitf("%v", err)
	}
	lex, err := corpus.LoadToponymCoordinates(*coordLexicon)
	if err != nil {
		glog.Exitf("%v", err)
	}

	m, err := model.New(data, lex, params)
	if err != nil {
		glog.Exitf("%v", err)
	}

	m.Train()
	m.Decode()

	dish, coordinate := m.Assignments()
	if err := corpus.WriteTokenArray(*tokenOutput, data, dish, coordinate); err != nil {
		glog.Exitf("%v", err)
	}
	if err := m.SaveSnapshot(*countsOutput); err != nil {
		glog.Exitf("%v", err)
	}
	glog.Flush()
}
