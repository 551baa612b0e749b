package kb

// mlTopics is the built-in machine learning interview bank.
var mlTopics = []Topic{
	{
		Name:      "Fundamentals & Theory",
		Questions: []string{
			"What's the trade-off between bias and variance?",
			"What is gradient descent?",
			"Explain over-fitting and under-fitting and how to combat them?",
			"How do you combat the curse of dimensionality?",
			"What is regularization, why do we use it, and give some examples of common methods?",
			"Explain Principal Component Analysis (PCA)?",
			"What is data normalization and why do we need it?",
			"Can you explain the differences between supervised, unsupervised, and reinforcement learning?",
			"Define Learning Rate.",
			"What is the difference between Bayesian vs frequentist statistics?",
			"What is the difference between LDA and PCA for dimensionality reduction?",
			"What is t-SNE?",
			"What is the difference between t-SNE and PCA for dimensionality reduction?",
			"What is UMAP?",
			"What is the difference between t-SNE and UMAP for dimensionality reduction?",
			"What's the difference between a generative and discriminative model?",
			"Instance-Based Versus Model-Based Learning.",
		},
	},
	{
		Name:      "Neural Networks & Deep Learning",
		Questions: []string{
			"Why is ReLU better and more often used than Sigmoid in Neural Networks?",
			"What is batch normalization and why does it work?",
			"What is vanishing gradient?",
			"What is Momentum (w.r.t NN optimization)?",
			"What is the difference between Batch Gradient Descent and Stochastic Gradient Descent?",
			"List different activation neurons or functions.",
			"What is cost function?",
			"Epoch vs. Batch vs. Iteration.",
			"What are dropouts?",
			"When building a neural network, should you overfit or underfit it first?",
			"Write the vanilla gradient update.",
			"Draw graphs for sigmoid, tanh, ReLU, and leaky ReLU activation functions.",
			"What are pros and cons of each activation function?",
			"Is ReLU differentiable? What to do when it's not?",
			"Derive derivatives for sigmoid function when x is a vector.",
			"What's the motivation for skip connections in neural networks?",
			"How do we detect exploding gradients and prevent them?",
			"Why are RNNs especially susceptible to vanishing/exploding gradients?",
			"How does weight normalization help with training?",
			"Why is validation loss lower than training loss in large language models?",
			"What criteria would you use for early stopping?",
			"Compare gradient descent vs SGD vs mini-batch SGD.",
			"Why use epochs (sampling without replacement) instead of sampling with replacement?",
			"How do weight fluctuations during training affect performance?",
			"What happens with learning rate too high, too low, or acceptable?",
			"What's learning rate warmup and why is it needed?",
			"Compare batch norm and layer norm.",
			"Why prefer squared L2 norm over L2 norm for regularization?",
			"What is weight decay and why is it useful?",
			"What is the motivation for reducing learning rate throughout training?",
			"What are exceptions to reducing learning rate?",
			"What are the effects of decreasing batch size to 1?",
			"What are the effects of using entire training data in one batch?",
			"How to adjust learning rate with batch size changes?",
			"Why is Adagrad favored for sparse gradient problems?",
			"Adam vs. SGD convergence and generalization ability?",
			"What are additional differences between Adam and SGD optimizers?",
		},
	},
	{
		Name:      "Computer Vision",
		Questions: []string{
			"Why do we use convolutions for images rather than just FC layers?",
			"What makes CNNs translation invariant?",
			"Why do we have max-pooling in classification CNNs?",
			"Describe how convolution works. What about grayscale vs RGB imagery?",
			"Why do segmentation CNNs typically have an encoder-decoder structure?",
			"What is the significance of Residual Networks?",
			"Why would you use many small convolutional kernels such as 3x3 rather than a few large ones?",
			"Given stride S and kernel sizes for each layer of a (1-dimensional) CNN, create a function to compute the receptive field.",
			"Implement connected components on an image/matrix.",
			"How would you remove outliers when trying to estimate a flat plane from noisy samples?",
			"How does CBIR work?",
			"How does image registration work? Sparse vs. dense optical flow.",
			"Talk me through how you would create a 3D model of an object from imagery and depth sensor measurements.",
			"Implement non maximal suppression as efficiently as you can.",
			"What are RCNNs?",
			"How do filter sizes affect accuracy and computational efficiency?",
			"What is ideal filter size selection?",
			"What makes convolutional layers locally connected?",
			"What's the role of zero padding?",
			"What is the need for upsampling and what are the methods?",
			"What is the function of 1x1 convolutional layers?",
			"What are the differences between max-pooling versus average pooling?",
			"When to use max-pooling vs average pooling?",
			"What are the consequences of pooling removal?",
			"What happens when replacing 2x2 max pool with stride-2 conv layer?",
			"How do depthwise separable convolutions reduce parameters?",
			"How to use ImageNet-trained models (256x256) on different-sized images (320x360)?",
			"How to convert fully-connected layers to convolutional layers?",
			"What are the trade-offs between FFT-based versus Winograd-based convolution?",
		},
	},
	{
		Name:      "Natural Language Processing",
		Questions: []string{
			"What's the motivation for RNN?",
			"Define LSTM.",
			"List the key components of LSTM.",
			"What's the motivation for LSTM?",
			"List the variants of RNN.",
			"What is the basic difference between LSTM and Transformers?",
			"How would you do dropouts in an RNN?",
			"What's density estimation? Why do we say a language model is a density estimator?",
			"Language models are often referred to as unsupervised learning, but some say its mechanism isn't that different from supervised learning. What are your thoughts?",
			"Why do we need word embeddings?",
			"What's the difference between count-based and prediction-based word embeddings?",
			"Most word embedding algorithms assume words appearing in similar contexts have similar meanings. What are problems with context-based embeddings?",
			"Would you use n-gram or neural language model for a 10,000-token dataset?",
			"For n-gram language models, does increasing context length improve performance?",
			"What problems occur using softmax for word-level language models? How do we fix it?",
			"What's the Levenshtein distance of the two words 'doctor' and 'bottle'?",
			"BLEU is popular for machine translation. What are its pros and cons?",
			"Character-level entropy of 2 vs. word-level entropy of 6—which model to deploy?",
			"Would you make a NER training corpus case-sensitive or case-insensitive?",
			"Why does removing stop words sometimes hurt sentiment analysis?",
			"Why do many models use relative position embedding instead of absolute?",
			"Why do some NLP models share weights between embedding and pre-softmax layers?",
		},
	},
	{
		Name:      "Ensemble Methods",
		Questions: []string{
			"Why do ensembles typically have higher scores than individual models?",
			"What's the difference between boosting and bagging?",
		},
	},
	{
		Name:      "Model Evaluation & Metrics",
		Questions: []string{
			"Why do we need a validation set and test set? What is the difference between them?",
			"What is stratified cross-validation and when should we use it?",
			"What is Precision?",
			"What is Recall?",
			"Define F1-score.",
			"Explain how a ROC curve works.",
			"What's the difference between Type I and Type II error?",
			"What is an imbalanced dataset? Can you list some ways to deal with it?",
		},
	},
	{
		Name:      "Data Preprocessing & Augmentation",
		Questions: []string{
			"What is data augmentation? Can you give some examples?",
			"When to use a Label Encoding vs. One Hot Encoding?",
		},
	},
	{
		Name:      "Autoencoders & Generative Models",
		Questions: []string{
			"What is Autoencoder, name few applications.",
			"What are the components of GAN?",
		},
	},
	{
		Name:      "Math - Vectors & Matrices",
		Questions: []string{
			"What's the geometric interpretation of the dot product of two vectors?",
			"Given a vector u, find vector v of unit length such that the dot product of u and v is maximum.",
			"Given two vectors a = [3, 2, 1] and b = [-1, 0, 1]. Calculate the outer product a^Tb?",
			"Give an example of how the outer product can be useful in ML.",
			"What does it mean for two vectors to be linearly independent?",
			"Given two sets of vectors A and B. How do you check that they share the same basis?",
			"Given n vectors, each of d dimensions. What is the dimension of their span?",
			"What's a norm? What is L_0, L_1, L_2, L_∞ norm?",
			"How do norm and metric differ? Given a norm, make a metric. Given a metric, can we make a norm?",
			"Why do we say that matrices are linear transformations?",
			"What's the inverse of a matrix? Do all matrices have an inverse? Is the inverse always unique?",
			"What does the determinant of a matrix represent?",
			"What happens to the determinant if we multiply one of its rows by a scalar t?",
			"What's the difference between the covariance matrix A^TA and the Gram matrix AA^T?",
		},
	},
	{
		Name:      "Miscellaneous",
		Questions: []string{
			"What is Turing test?",
			"How Random Number Generator Works, e.g. rand() function in python works?",
		},
	},
}

var defaultBank = MustNew(mlTopics)

// Default returns the built-in bank. The returned value is shared and immutable.
func Default() *Bank { return defaultBank }
