package ignoredtree

func secret() string {
	return "should never be indexed"
}
