package service

// Sample is a built-in document offered for quick adding.
type Sample struct {
	Title string
	Text  string
}

var samples = []Sample{
	{
		Title: "Machine Learning Basics",
		Text: "Machine learning is a branch of artificial intelligence where systems learn patterns from data instead of following hand-written rules. " +
			"In supervised learning a model is trained on labeled examples, while unsupervised learning finds structure in unlabeled data. " +
			"Common algorithms include linear regression, decision trees and support vector machines. " +
			"A trained model is evaluated on held-out test data to check how well it generalizes.",
	},
	{
		Title: "Deep Learning",
		Text: "Deep learning is a subset of machine learning that uses neural networks with many layers. " +
			"Each layer learns increasingly abstract representations of the input data. " +
			"Deep neural networks are trained with backpropagation and gradient descent on large datasets, usually on GPUs. " +
			"Architectures such as convolutional networks, recurrent networks and transformers power modern speech, vision and language systems.",
	},
	{
		Title: "Natural Language Processing",
		Text: "Natural language processing (NLP) teaches computers to understand and generate human language. " +
			"Typical tasks include tokenization, part-of-speech tagging, named entity recognition, sentiment analysis and machine translation. " +
			"Modern NLP relies on word embeddings and large language models built on the transformer architecture. " +
			"Retrieval-augmented generation combines a language model with a document search step to ground answers in real text.",
	},
	{
		Title: "Computer Vision",
		Text: "Computer vision enables machines to interpret images and video. " +
			"Core tasks include image classification, object detection, semantic segmentation and face recognition. " +
			"Convolutional neural networks learn visual features such as edges, textures and shapes directly from pixels. " +
			"Applications range from medical imaging and self-driving cars to photo search and industrial inspection.",
	},
}

// Samples returns the built-in sample documents in display order.
func (s *RAGService) Samples() []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	return out
}
